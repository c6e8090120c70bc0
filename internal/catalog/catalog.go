// Package catalog loads table definitions and their row data.
//
// A catalog is a YAML file listing tables: ordered columns, hash indexes,
// and a data source that is either a JSONL file (one object per line,
// relative to the catalog file) or inline rows. Rows are materialized in
// column order at load time, and every declared index is built up front.
package catalog

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/siftql/sift/internal/index"
)

//go:embed demo
var demoFS embed.FS

// Index declares a hash index over one or more columns.
type Index struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// Table is a loaded table: schema, rows in column order, built indexes.
type Table struct {
	Name    string
	Columns []string
	Indexes []Index
	Rows    [][]any

	built map[string]*index.Built
}

// Catalog is a set of loaded tables.
type Catalog struct {
	tables      map[string]*Table
	names       []string
	fingerprint string
}

// UnknownTableError reports a lookup of a table the catalog does not hold.
type UnknownTableError struct {
	Name string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q", e.Name)
}

type tableSpec struct {
	Name    string           `yaml:"name"`
	Columns []string         `yaml:"columns"`
	Indexes []Index          `yaml:"indexes"`
	Data    string           `yaml:"data"`
	Rows    []map[string]any `yaml:"rows"`
}

type fileSpec struct {
	Tables []tableSpec `yaml:"tables"`
}

// Load reads a catalog file and materializes every table it declares.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	dir := filepath.Dir(path)
	cat, err := build(spec, func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	})
	if err != nil {
		return nil, err
	}

	cat.fingerprint, err = fileFingerprint(path, dir, spec)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Demo returns the built-in catalog: the animal/species sample tables and
// a small music dataset (Album, Artist, Track).
func Demo() *Catalog {
	data, err := demoFS.ReadFile("demo/catalog.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded catalog missing: %v", err))
	}
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	cat, err := build(spec, func(name string) ([]byte, error) {
		return demoFS.ReadFile("demo/" + name)
	})
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	cat.fingerprint = "demo:v1"
	return cat
}

func build(spec fileSpec, readFile func(string) ([]byte, error)) (*Catalog, error) {
	cat := &Catalog{tables: make(map[string]*Table)}

	for _, ts := range spec.Tables {
		if ts.Name == "" {
			return nil, fmt.Errorf("catalog declares a table without a name")
		}
		if len(ts.Columns) == 0 {
			return nil, fmt.Errorf("table %q declares no columns", ts.Name)
		}
		if _, dup := cat.tables[ts.Name]; dup {
			return nil, fmt.Errorf("table %q declared twice", ts.Name)
		}

		objects, err := loadObjects(ts, readFile)
		if err != nil {
			return nil, err
		}

		t := &Table{
			Name:    ts.Name,
			Columns: ts.Columns,
			Indexes: ts.Indexes,
			built:   make(map[string]*index.Built),
		}

		for i, obj := range objects {
			row, err := intoRow(obj, ts.Columns)
			if err != nil {
				return nil, fmt.Errorf("table %q row %d: %w", ts.Name, i+1, err)
			}
			t.Rows = append(t.Rows, row)
		}

		for _, idx := range ts.Indexes {
			keyPos := make([]int, len(idx.Columns))
			for k, col := range idx.Columns {
				pos := t.columnPos(col)
				if pos < 0 {
					return nil, fmt.Errorf("index %q on table %q names unknown column %q",
						idx.Name, ts.Name, col)
				}
				keyPos[k] = pos
			}
			t.built[idx.Name] = index.Build(t.Rows, keyPos)
		}

		cat.tables[ts.Name] = t
		cat.names = append(cat.names, ts.Name)
	}

	return cat, nil
}

func loadObjects(ts tableSpec, readFile func(string) ([]byte, error)) ([]map[string]any, error) {
	if ts.Data != "" && len(ts.Rows) > 0 {
		return nil, fmt.Errorf("table %q declares both a data file and inline rows", ts.Name)
	}

	if ts.Data != "" {
		data, err := readFile(ts.Data)
		if err != nil {
			return nil, fmt.Errorf("reading data for table %q: %w", ts.Name, err)
		}
		return decodeJSONL(data)
	}

	objects := make([]map[string]any, len(ts.Rows))
	for i, row := range ts.Rows {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = Normalize(v)
		}
		objects[i] = m
	}
	return objects, nil
}

func decodeJSONL(data []byte) ([]map[string]any, error) {
	var objects []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		objects = append(objects, Normalize(obj).(map[string]any))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning data: %w", err)
	}
	return objects, nil
}

// intoRow orders an object's values by the table's column list. Every
// column must be present.
func intoRow(obj map[string]any, columns []string) ([]any, error) {
	row := make([]any, len(columns))
	for i, col := range columns {
		v, ok := obj[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		row[i] = v
	}
	return row, nil
}

// Normalize converts decoded values into the engine's scalar types:
// integral numbers become int64, other numbers float64. Containers are
// normalized recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case int:
		return int64(t)
	case int64:
		return t
	case uint64:
		return int64(t)
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
		return t
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = Normalize(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = Normalize(val)
		}
		return s
	default:
		return v
	}
}

// Table returns the named table.
func (c *Catalog) Table(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, &UnknownTableError{Name: name}
	}
	return t, nil
}

// Names lists table names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Fingerprint identifies the catalog contents for cache keying. It covers
// the catalog path and the size and mtime of every data file, so edits
// invalidate cached results.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// BuiltIndex returns the constructed index with the given name.
func (t *Table) BuiltIndex(name string) (*index.Built, bool) {
	b, ok := t.built[name]
	return b, ok
}

func (t *Table) columnPos(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

func fileFingerprint(path, dir string, spec fileSpec) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	h := sha256.New()
	fmt.Fprintf(h, "catalog:%s\n", abs)

	var files []string
	for _, ts := range spec.Tables {
		if ts.Data != "" {
			files = append(files, ts.Data)
		}
	}
	sort.Strings(files)

	for _, name := range files {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("stat data file %q: %w", name, err)
		}
		fmt.Fprintf(h, "%s:%d:%d\n", name, info.Size(), info.ModTime().UnixNano())
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
