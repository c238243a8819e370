package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSource reads datasets from files named <selector><ext> in Dir.
type DirSource struct {
	Dir string
}

func (d *DirSource) Open(ctx context.Context, selector string) (io.ReadCloser, string, error) {
	if err := checkSelector(selector); err != nil {
		return nil, "", err
	}
	for _, ext := range extensions {
		name := selector + ext
		f, err := os.Open(filepath.Join(d.Dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", name, err)
		}
		return f, name, nil
	}
	return nil, "", fmt.Errorf("%w: %q in %s", ErrNotFound, selector, d.Dir)
}

func (d *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.Dir, err)
	}
	var ss []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if s, ok := selectorOf(e.Name()); ok {
			ss = append(ss, s)
		}
	}
	return sortSelectors(ss), nil
}
