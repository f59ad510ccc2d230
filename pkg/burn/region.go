package burn

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverSources finds all GeoJSON files in a directory tree.
//
// Files with a .geojson or .json extension are returned in lexical order, so
// repeated runs load features in the same order.
//
// Example:
//
//	paths, err := burn.DiscoverSources("/data/burned-areas")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Found %d sources\n", len(paths))
func DiscoverSources(root string) ([]string, error) {
	var paths []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".geojson", ".json":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadSources loads the explicit paths followed by every source discovered
// under dir. Duplicate paths are loaded once, at their first position.
//
// An empty dir is skipped. A dir that cannot be walked is reported as a
// diagnostic rather than an error.
func LoadSources(paths []string, dir string, opts LoadOptions) (*Table, Diagnostics) {
	all := append([]string(nil), paths...)

	var extra Diagnostics
	if dir != "" {
		found, err := DiscoverSources(dir)
		if err != nil {
			extra = append(extra, sourceDiagnostic(dir, "discover sources failed", err))
		}
		all = append(all, found...)
	}

	seen := make(map[string]bool, len(all))
	unique := all[:0]
	for _, p := range all {
		key := filepath.Clean(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}

	for _, d := range extra {
		opts.logger().Warn().Str("source", d.Source).Err(d.Err).Msg(d.Reason)
	}

	table, diags := LoadFilesParallel(unique, opts)
	return table, append(extra, diags...)
}
