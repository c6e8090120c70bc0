package engine

import (
	"fmt"

	"github.com/siftql/sift/internal/catalog"
	"github.com/siftql/sift/internal/plan"
)

func (e *executor) tableScan(s plan.Scan) (*Result, error) {
	t, err := e.cat.Table(s.Table)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = Row(r)
	}

	return &Result{
		Schema: scanSchema(t, s.Alias),
		Rows:   rows,
		Cost:   Cost{RowsProcessed: len(rows)},
	}, nil
}

func (e *executor) indexScan(s plan.IndexScan) (*Result, error) {
	t, err := e.cat.Table(s.Table)
	if err != nil {
		return nil, err
	}
	built, ok := t.BuiltIndex(s.Index)
	if !ok {
		return nil, fmt.Errorf("index %q not found on table %q", s.Index, s.Table)
	}

	ordinals := built.Lookup(s.Key)
	rows := make([]Row, 0, len(ordinals))
	for _, ord := range ordinals {
		if ord < 0 || ord >= len(t.Rows) {
			return nil, fmt.Errorf("index %q on table %q is out of sync", s.Index, s.Table)
		}
		rows = append(rows, Row(t.Rows[ord]))
	}

	return &Result{
		Schema: scanSchema(t, s.Alias),
		Rows:   rows,
		Cost:   Cost{RowsProcessed: len(rows)},
	}, nil
}

func scanSchema(t *catalog.Table, alias string) Schema {
	columns := make([]Column, len(t.Columns))
	for i, name := range t.Columns {
		columns[i] = Column{Table: alias, Name: name}
	}
	return Schema{Columns: columns}
}
