// Package loader finds, decodes and validates datasets by selector.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is wrapped by errors for selectors without a dataset.
var ErrNotFound = errors.New("dataset not found")

// Source opens dataset documents by selector.
type Source interface {
	// Open returns the document for selector and its name, whose extension
	// gives the format. Missing documents wrap ErrNotFound.
	Open(ctx context.Context, selector string) (rc io.ReadCloser, name string, err error)

	// List returns the available selectors in order.
	List(ctx context.Context) ([]string, error)
}

// extensions are tried in order for a selector.
var extensions = []string{".json", ".json.sz", ".yaml", ".yaml.sz", ".yml", ".yml.sz"}

// checkSelector rejects selectors that could escape a source's namespace.
func checkSelector(selector string) error {
	if selector == "" || strings.ContainsAny(selector, `/\`) || strings.Contains(selector, "..") {
		return fmt.Errorf("%w: invalid selector %q", ErrNotFound, selector)
	}
	return nil
}

// selectorOf returns the selector for a document name, if it has a known extension.
func selectorOf(name string) (string, bool) {
	for _, ext := range extensions {
		if s := strings.TrimSuffix(name, ext); s != name && s != "" {
			return s, true
		}
	}
	return "", false
}

// sortSelectors orders numeric selectors by value, before any others.
func sortSelectors(ss []string) []string {
	sort.Slice(ss, func(i, j int) bool {
		a, aerr := strconv.ParseInt(ss[i], 10, 64)
		b, berr := strconv.ParseInt(ss[j], 10, 64)
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		}
		return ss[i] < ss[j]
	})
	return dedupe(ss)
}

func dedupe(ss []string) []string {
	if len(ss) < 2 {
		return ss
	}
	out := ss[:1]
	for _, s := range ss[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
