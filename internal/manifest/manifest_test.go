package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwutils/nwget/internal/dist"
)

const testManifest = `{
  "latest": "v0.105.0",
  "stable": "v0.104.1",
  "lts": "v0.14.7",
  "versions": [
    {"version": "v0.105.0", "date": "2025/10/22", "files": ["linux-x64", "osx-arm64"], "flavors": ["normal", "sdk"]}
  ]
}`

func newManifestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, dist.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestResolverResolve(t *testing.T) {
	server, _ := newManifestServer(t, http.StatusOK, testManifest)
	r := NewResolver(server.URL+"/versions.json", server.Client())

	tests := []struct {
		version string
		want    string
	}{
		{"latest", "0.105.0"},
		{"stable", "0.104.1"},
		{"lts", "0.14.7"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverConcreteVersionSkipsManifest(t *testing.T) {
	server, hits := newManifestServer(t, http.StatusOK, testManifest)
	r := NewResolver(server.URL, server.Client())

	got, err := r.Resolve(context.Background(), "v0.90")
	require.NoError(t, err)
	assert.Equal(t, "0.90.0", got)
	assert.Zero(t, hits.Load())
}

func TestResolverMissingAlias(t *testing.T) {
	server, _ := newManifestServer(t, http.StatusOK, `{"latest": "v0.105.0"}`)
	r := NewResolver(server.URL, server.Client())

	_, err := r.Resolve(context.Background(), "lts")
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestResolverFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not_found", status: http.StatusNotFound, body: "missing"},
		{name: "invalid_json", status: http.StatusOK, body: "<html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newManifestServer(t, tt.status, tt.body)
			_, err := NewResolver(server.URL, server.Client()).Resolve(context.Background(), "latest")

			var dlErr *dist.DownloadError
			require.ErrorAs(t, err, &dlErr)
			assert.True(t, errdefs.IsUnavailable(err))
		})
	}
}

func TestResolverFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.json")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0644))

	r := NewResolver("file://"+filepath.ToSlash(path), nil)
	m, err := r.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, m.Versions, 1)
	assert.Equal(t, []string{"normal", "sdk"}, m.Versions[0].Flavors)

	got, err := r.Resolve(context.Background(), "stable")
	require.NoError(t, err)
	assert.Equal(t, "0.104.1", got)
}

func TestResolverUnsupportedScheme(t *testing.T) {
	_, err := NewResolver("ftp://nwjs.io/versions.json", nil).Resolve(context.Background(), "latest")
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestResolverCancelled(t *testing.T) {
	server, _ := newManifestServer(t, http.StatusOK, testManifest)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(server.URL, server.Client()).Resolve(ctx, "latest")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver("", nil)
	assert.Equal(t, DefaultURL, r.url)
	require.NotNil(t, r.client)
	assert.NotSame(t, http.DefaultClient, r.client)
	assert.Equal(t, DefaultTimeout, r.client.Timeout)
}

func TestResolverUnresponsiveServer(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	r := NewResolver(server.URL, nil)
	r.client.Timeout = 50 * time.Millisecond

	_, err := r.Resolve(context.Background(), "latest")
	var dlErr *dist.DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.True(t, errdefs.IsUnavailable(err))
}
