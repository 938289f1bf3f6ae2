package routeconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

// ObjectGetter reads objects from S3. *s3.Client satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadS3 reads a document from an S3 object. The format follows the key's
// extension.
//
// Example:
//
//	client := s3.NewFromConfig(cfg)
//	doc, err := routeconfig.LoadS3(ctx, client, "my-bucket", "spa/routes.yaml")
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) (*Document, error) {
	source := S3URI(bucket, key)

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nerrors.New("N301").
				WithSource(source).
				WithDetail("No route configuration found at " + source).
				Wrap(err)
		}
		return nil, nerrors.New("N305").WithSource(source).WithDetail(err.Error()).Wrap(err)
	}
	defer out.Body.Close()

	doc, err := Load(out.Body, FormatOf(key))
	if err != nil {
		if e, ok := err.(*nerrors.Error); ok {
			e.WithSource(source)
		}
		return nil, err
	}
	doc.source = source
	return doc, nil
}

// S3URI formats a bucket and key as "s3://bucket/key".
func S3URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, strings.TrimPrefix(key, "/"))
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
