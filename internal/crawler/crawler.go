package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Crawler finds program files under the paths given on a command line.
type Crawler struct {
	ext     string
	ignored []string
}

// NewCrawler creates a crawler for files with the given extension.
func NewCrawler(ext string) *Crawler {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Crawler{
		ext:     ext,
		ignored: []string{".git", "vendor", "node_modules"},
	}
}

// Collect expands each path: files are kept as given, directories are walked
// for matching files in lexical order. Duplicates are dropped.
func (c *Crawler) Collect(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		found, err := c.scan(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

func (c *Crawler) scan(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root {
				for _, ign := range c.ignored {
					if d.Name() == ign {
						return filepath.SkipDir
					}
				}
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), c.ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
