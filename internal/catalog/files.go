package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadFiles reads service records from every YAML file matched by the glob
// patterns, which may use ** to cross directories. Files are read in lexical
// order and each file is read once even when several patterns match it.
func LoadFiles(patterns ...string) ([]ServiceRecord, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			switch filepath.Ext(m) {
			case ".yaml", ".yml":
				paths = append(paths, m)
			}
		}
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	var records []ServiceRecord
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		recs, err := ParseServices(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		records = append(records, recs...)
	}
	return records, nil
}
