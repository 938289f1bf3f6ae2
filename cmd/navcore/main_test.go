package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

const testRoutes = "testdata/routes.yaml"

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutesCommand(t *testing.T) {
	out, err := execute(t, "routes", "-c", testRoutes)
	require.NoError(t, err)

	assert.Contains(t, out, "6 routes from")
	assert.Contains(t, out, "Dashboard")
	assert.Contains(t, out, "/accounts/:handle:handle")
	assert.Contains(t, out, "→ /publish-video")
	assert.Contains(t, out, "fallback: NotFound")
	assert.Contains(t, out, "max redirects: 5")
}

func TestRoutesOutputJSON(t *testing.T) {
	out, err := execute(t, "routes", "-c", testRoutes, "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Fallback string `json:"fallback"`
		Routes   []struct {
			Path string `json:"path"`
		} `json:"routes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "NotFound", doc.Fallback)
	assert.Len(t, doc.Routes, 6)
}

func TestRoutesUnknownFormat(t *testing.T) {
	_, err := execute(t, "routes", "-c", testRoutes, "-o", "toml")
	require.Error(t, err)
	assert.True(t, nerrors.HasCode(err, "N304"))
}

func TestRoutesMissingFile(t *testing.T) {
	_, err := execute(t, "routes", "-c", "testdata/missing.yaml")
	require.Error(t, err)
	assert.True(t, nerrors.HasCode(err, "N301"))
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "routes", "-c", testRoutes, "--log-level", "loud")
	require.Error(t, err)
	assert.True(t, nerrors.HasCode(err, "N304"))
}

func TestResolveCommand(t *testing.T) {
	out, err := execute(t, "resolve", "-c", testRoutes, "#/publish-center", "/accounts/bob_1?tab=posts")
	require.NoError(t, err)

	assert.Contains(t, out, "#/publish-center → PublishVideo PublishCenter")
	assert.Contains(t, out, "location: #/publish-video")
	assert.Contains(t, out, "redirected from: /publish-center")
	assert.Contains(t, out, "location: #/accounts/bob_1?tab=posts")
	assert.Contains(t, out, "params: handle=bob_1")
}

func TestResolveFailure(t *testing.T) {
	out, err := execute(t, "resolve", "-c", testRoutes, "#/", "#/accounts/X")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 locations did not resolve", err.Error())

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "#/ → Dashboard")
	assert.Contains(t, out, "✗ #/accounts/X")
	assert.Contains(t, out, "N100")
	assert.Contains(t, out, "fallback: NotFound")
}

func TestResolveRequiresLocation(t *testing.T) {
	_, err := execute(t, "resolve", "-c", testRoutes)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
}

func TestAbsPathKeepsS3URIs(t *testing.T) {
	assert.Equal(t, "s3://bucket/routes.yaml", absPath("s3://bucket/routes.yaml"))
	assert.True(t, strings.HasSuffix(absPath(testRoutes), "/cmd/navcore/testdata/routes.yaml"))
}
