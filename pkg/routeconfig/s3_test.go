package routeconfig

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

type fakeS3 struct {
	objects map[string]string
	err     error
	input   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestLoadS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"spa/config/routes.json": `{"routes": [{"path": "/", "name": "Home", "component": "Home"}]}`,
		"spa/config/bad.yaml":    "routes: [",
	}}
	ctx := context.Background()

	doc, err := LoadS3(ctx, client, "spa", "config/routes.json")
	require.NoError(t, err)
	assert.Equal(t, "s3://spa/config/routes.json", doc.Source())
	assert.Equal(t, "spa", aws.ToString(client.input.Bucket))
	require.Len(t, doc.Routes, 1)

	_, err = LoadS3(ctx, client, "spa", "config/missing.yaml")
	assert.True(t, nerrors.HasCode(err, "N301"))

	_, err = LoadS3(ctx, client, "spa", "config/bad.yaml")
	assert.True(t, nerrors.HasCode(err, "N302"))
	assert.Contains(t, err.Error(), "s3://spa/config/bad.yaml")
}

func TestLoadS3FetchFailure(t *testing.T) {
	denied := errors.New("access denied")
	_, err := LoadS3(context.Background(), &fakeS3{err: denied}, "spa", "routes.yaml")
	assert.True(t, nerrors.HasCode(err, "N305"))
	assert.ErrorIs(t, err, denied)
}

func TestS3URI(t *testing.T) {
	assert.Equal(t, "s3://b/k/routes.yaml", S3URI("b", "/k/routes.yaml"))

	tests := []struct {
		uri    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://b/k/routes.yaml", "b", "k/routes.yaml", true},
		{"s3://b", "", "", false},
		{"s3:///k", "", "", false},
		{"s3://b/", "", "", false},
		{"routes.yaml", "", "", false},
	}
	for _, tt := range tests {
		bucket, key, ok := ParseS3URI(tt.uri)
		assert.Equal(t, tt.ok, ok, tt.uri)
		assert.Equal(t, tt.bucket, bucket, tt.uri)
		assert.Equal(t, tt.key, key, tt.uri)
	}
}

var _ ObjectGetter = (*s3.Client)(nil)
