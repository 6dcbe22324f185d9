package producer

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/torosent/sortbench/internal/batch"
)

// FixtureSupplier replays rows loaded from a fixture file.
type FixtureSupplier struct {
	*SliceSupplier
	columns []string
}

// Columns returns the fixture's column names, if it declares any.
func (f *FixtureSupplier) Columns() []string {
	return f.columns
}

// NewJSON loads a JSON fixture holding an array of arrays or an array of
// objects. For objects, the first object's keys set the column order.
func NewJSON(path string) (*FixtureSupplier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open JSON file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode JSON: invalid document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("decode JSON: expected top-level array, got %s", root.Type)
	}

	var (
		columns  []string
		rows     []batch.Row
		parseErr error
	)
	index := 0
	root.ForEach(func(_, item gjson.Result) bool {
		var row batch.Row
		switch {
		case item.IsArray():
			row, parseErr = jsonArrayRow(item)
		case item.IsObject():
			if index == 0 {
				item.ForEach(func(key, _ gjson.Result) bool {
					columns = append(columns, key.String())
					return true
				})
			}
			row, parseErr = jsonObjectRow(item, columns)
		default:
			parseErr = fmt.Errorf("expected array or object, got %s", item.Type)
		}
		if parseErr == nil && len(rows) > 0 && len(row) != len(rows[0]) {
			parseErr = fmt.Errorf("has %d fields, expected %d", len(row), len(rows[0]))
		}
		if parseErr != nil {
			parseErr = fmt.Errorf("record %d: %w", index, parseErr)
			return false
		}
		rows = append(rows, row)
		index++
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return &FixtureSupplier{SliceSupplier: NewSlice(rows), columns: columns}, nil
}

func jsonArrayRow(item gjson.Result) (batch.Row, error) {
	values := item.Array()
	row := make(batch.Row, len(values))
	for i, v := range values {
		row[i] = jsonValue(v)
	}
	return row, nil
}

func jsonObjectRow(item gjson.Result, columns []string) (batch.Row, error) {
	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c] = i
	}
	row := make(batch.Row, len(columns))
	var err error
	item.ForEach(func(key, value gjson.Result) bool {
		i, ok := position[key.String()]
		if !ok {
			err = fmt.Errorf("unknown field %q", key.String())
			return false
		}
		row[i] = jsonValue(value)
		return true
	})
	return row, err
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return i
			}
		}
		return v.Float()
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

type yamlFixture struct {
	Columns []string `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// NewYAML loads a YAML fixture of the form:
//
//	columns: [id, name]
//	rows:
//	  - [1, alice]
//	  - [2, bob]
func NewYAML(path string) (*FixtureSupplier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open YAML file: %w", err)
	}
	var doc yamlFixture
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}

	width := len(doc.Columns)
	rows := make([]batch.Row, 0, len(doc.Rows))
	for i, raw := range doc.Rows {
		if width == 0 {
			width = len(raw)
		}
		if len(raw) != width {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i, len(raw), width)
		}
		row := make(batch.Row, len(raw))
		for j, v := range raw {
			row[j] = yamlValue(v)
		}
		rows = append(rows, row)
	}

	return &FixtureSupplier{SliceSupplier: NewSlice(rows), columns: doc.Columns}, nil
}

func yamlValue(v any) any {
	switch val := v.(type) {
	case nil, bool, int64, float64, string:
		return val
	case int:
		return int64(val)
	case uint64:
		return float64(val)
	default:
		return fmt.Sprint(val)
	}
}
