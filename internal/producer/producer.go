// Package producer provides concrete batch suppliers: synthetic generators,
// in-memory replay and fixture files.
package producer

import (
	"fmt"
	"strings"

	"github.com/torosent/sortbench/internal/batch"
	"github.com/torosent/sortbench/internal/supplier"
)

// Kind names a producer variant.
type Kind string

const (
	KindGenerator Kind = "generator"
	KindSlice     Kind = "slice"
	KindEmpty     Kind = "empty"
	KindCSV       Kind = "csv"
	KindJSON      Kind = "json"
	KindYAML      Kind = "yaml"
)

// Spec selects and configures a producer.
type Spec struct {
	Kind      Kind
	Path      string
	CSV       CSVOptions
	Generator GeneratorOptions
	Rows      []batch.Row
}

// Open constructs the producer described by spec. The caller owns the
// returned supplier and must Close it.
func Open(spec Spec) (supplier.Supplier, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(string(spec.Kind))))
	if kind == "" {
		kind = KindGenerator
	}

	switch kind {
	case KindGenerator:
		g, err := NewGenerator(spec.Generator)
		if err != nil {
			return nil, err
		}
		return g, nil
	case KindSlice:
		return NewSlice(spec.Rows), nil
	case KindEmpty:
		return NewEmpty(), nil
	case KindCSV, KindJSON, KindYAML:
	default:
		return nil, fmt.Errorf("unsupported producer type %q", spec.Kind)
	}

	path := strings.TrimSpace(spec.Path)
	if path == "" {
		return nil, fmt.Errorf("%s producer requires a path", kind)
	}
	var (
		s   supplier.Supplier
		err error
	)
	switch kind {
	case KindCSV:
		s, err = NewCSV(path, spec.CSV)
	case KindJSON:
		s, err = NewJSON(path)
	case KindYAML:
		s, err = NewYAML(path)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
