package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"go.uber.org/zap"

	"dasa.cc/primeview/dataset"
)

// MaxDocumentSize bounds the bytes read for one dataset document.
const MaxDocumentSize = 256 << 20

// Loader decodes and validates datasets from a Source.
type Loader struct {
	Source Source
	Logger *zap.Logger
}

func New(src Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Source: src, Logger: logger}
}

// Load returns the valid dataset for selector.
func (l *Loader) Load(ctx context.Context, selector string) (*dataset.Dataset, error) {
	rc, name, err := l.Source.Open(ctx, selector)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, ok := dataset.FormatOf(name)
	if !ok {
		return nil, fmt.Errorf("%s: unknown dataset format", name)
	}
	data, err := io.ReadAll(io.LimitReader(rc, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("read %s: document exceeds %d bytes", name, MaxDocumentSize)
	}
	if strings.HasSuffix(name, ".sz") {
		if data, err = snappy.Decode(nil, data); err != nil {
			return nil, fmt.Errorf("decompress %s: %w", name, err)
		}
	}

	ds, err := dataset.Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	ds.Selector = selector

	l.Logger.Debug("dataset decoded",
		zap.String("selector", selector),
		zap.String("name", name),
		zap.String("kind", string(ds.Kind)),
		zap.Int("elements", ds.Len()),
		zap.Int("relations", len(ds.Relations)),
	)
	return ds, nil
}

// List returns the selectors available from the source.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	return l.Source.List(ctx)
}

// Neighbor returns the selector d steps from selector in List order,
// clamped to the ends. An unknown selector starts from the first.
func (l *Loader) Neighbor(ctx context.Context, selector string, d int) (string, error) {
	ss, err := l.List(ctx)
	if err != nil {
		return "", err
	}
	if len(ss) == 0 {
		return "", fmt.Errorf("%w: source is empty", ErrNotFound)
	}
	i := 0
	for j, s := range ss {
		if s == selector {
			i = j + d
			break
		}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(ss) {
		i = len(ss) - 1
	}
	return ss[i], nil
}
