// Package gather locates backtest report files on disk and groups them
// by the in-sample / out-of-sample naming convention.
package gather

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultGroups is the conventional grouping: strategies tested in-sample
// (_IS suffix), out-of-sample (_OS suffix), and everything else combined.
// The last group is always the fallback for unmatched files.
var DefaultGroups = []string{"IS", "OS", "ISOS"}

var reportExtensions = map[string]bool{
	".htm":  true,
	".html": true,
}

// Grouping maps a group name to the sorted report paths assigned to it.
type Grouping map[string][]string

// Scan lists the report files in dir and groups them by filename suffix.
func Scan(dir string, groups []string) (Grouping, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan report directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsReportFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	return Group(paths, groups), nil
}

// Group assigns each report path to the group matching its filename
// suffix (<name>_<group>.htm). Unmatched files land in the last group.
func Group(paths []string, groups []string) Grouping {
	if len(groups) == 0 {
		groups = DefaultGroups
	}

	grouping := make(Grouping, len(groups))
	for _, name := range groups {
		grouping[name] = []string{}
	}

	fallback := groups[len(groups)-1]
	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		assigned := fallback
		for _, name := range groups {
			if strings.HasSuffix(stem, "_"+name) {
				assigned = name
				break
			}
		}
		grouping[assigned] = append(grouping[assigned], path)
	}

	for name := range grouping {
		sort.Strings(grouping[name])
	}
	return grouping
}

// IsReportFile reports whether the filename looks like a backtest report.
func IsReportFile(name string) bool {
	return reportExtensions[strings.ToLower(filepath.Ext(name))]
}

// Total returns the number of files across all groups.
func (g Grouping) Total() int {
	total := 0
	for _, paths := range g {
		total += len(paths)
	}
	return total
}
