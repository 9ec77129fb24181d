package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjeg1979/gbx-analyzer/internal/config"
)

func TestLocalSourceFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_IS.htm"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))

	src := NewLocalSource(dir)
	paths, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a_IS.htm")}, paths)
	assert.Equal(t, "local", src.Name())
}

func TestLocalSourceMissingDir(t *testing.T) {
	src := NewLocalSource(filepath.Join(t.TempDir(), "nope"))
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestHTTPSourceDownloadsReports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sesame" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("<html><body>report</body></html>"))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := NewRateLimitedClient(ClientConfig{MaxRetries: 1}, nil)
	src := NewHTTPSource(client, []string{server.URL + "/alpha_IS.htm"}, dir, "sesame", nil)

	paths, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 1)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "report")
}

func TestHTTPSourceRejectsNonReportURL(t *testing.T) {
	client := NewRateLimitedClient(ClientConfig{}, nil)
	src := NewHTTPSource(client, []string{"http://example.com/data.csv"}, t.TempDir(), "", nil)

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".htm")
}

func TestNewSourceFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Reports.Dir = t.TempDir()
	cfg.Reports.Source.Name = "local"

	src, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", src.Name())

	cfg.Reports.Source.Name = "http"
	_, err = New(cfg, nil)
	require.Error(t, err, "http source without URLs must fail")

	cfg.Reports.Source.Name = "carrier-pigeon"
	_, err = New(cfg, nil)
	require.Error(t, err)
}
