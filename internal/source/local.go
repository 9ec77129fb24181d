package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jjeg1979/gbx-analyzer/internal/gather"
)

// LocalSource reads report files straight from a directory.
type LocalSource struct {
	dir string
}

// NewLocalSource creates a source over the given directory.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Name returns the name of the source
func (s *LocalSource) Name() string {
	return "local"
}

// Fetch lists the report files in the directory.
func (s *LocalSource) Fetch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory %s: %w", s.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !gather.IsReportFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
