package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jjeg1979/gbx-analyzer/internal/gather"
)

// HTTPSource downloads report files from a fixed URL list into destDir
// and hands the local copies to the pipeline.
type HTTPSource struct {
	client    *RateLimitedClient
	urls      []string
	destDir   string
	authToken string
	logger    *logrus.Logger
}

// NewHTTPSource creates a source that fetches the given report URLs.
func NewHTTPSource(client *RateLimitedClient, urls []string, destDir string, authToken string, logger *logrus.Logger) *HTTPSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPSource{
		client:    client,
		urls:      urls,
		destDir:   destDir,
		authToken: authToken,
		logger:    logger,
	}
}

// Name returns the name of the source
func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch downloads every configured URL and returns the local paths.
// A failed download fails the whole fetch; a partial report set would
// silently skew the shortlist.
func (s *HTTPSource) Fetch(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(s.destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var paths []string
	for _, rawURL := range s.urls {
		local, err := s.download(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
		}
		paths = append(paths, local)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *HTTPSource) download(ctx context.Context, rawURL string) (string, error) {
	name, err := reportFileName(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	local := filepath.Join(s.destDir, name)
	f, err := os.Create(local)
	if err != nil {
		return "", err
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(local)
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"url":   rawURL,
		"file":  local,
		"bytes": written,
	}).Debug("Downloaded report")

	return local, nil
}

// reportFileName derives the local filename from the URL path.
func reportFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid report URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || !gather.IsReportFile(name) {
		return "", fmt.Errorf("report URL %s does not point to an .htm file", rawURL)
	}
	return name, nil
}
