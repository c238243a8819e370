package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a dataset document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf returns the format for a file name, ignoring any compression suffix.
func FormatOf(name string) (Format, bool) {
	name = strings.TrimSuffix(name, ".sz")
	switch path.Ext(name) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return 0, false
}

// Decode reads one dataset document from r.
func Decode(r io.Reader, f Format) (*Dataset, error) {
	ds := new(Dataset)
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(ds)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(ds)
	default:
		return nil, fmt.Errorf("unknown format %d", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// Encode writes ds to w.
func Encode(w io.Writer, ds *Dataset, f Format) error {
	switch f {
	case FormatJSON:
		return json.NewEncoder(w).Encode(ds)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(ds); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %d", f)
}
