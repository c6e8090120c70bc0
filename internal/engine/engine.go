// Package engine executes plans against a catalog.
//
// Execution is a recursive interpretation of the plan tree: every operator
// consumes its input's fully materialized result and produces a new one,
// accumulating a rows-processed cost along the way.
package engine

import (
	"fmt"

	"github.com/siftql/sift/internal/catalog"
	"github.com/siftql/sift/internal/plan"
)

// Column identifies an output column: its name and the scan alias it came
// through, if any.
type Column struct {
	Table string `json:"table,omitempty"`
	Name  string `json:"name"`
}

// Display renders the column as alias.name, or just the name.
func (c Column) Display() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

// Schema is the ordered column list of a result.
type Schema struct {
	Columns []Column `json:"columns"`
}

// IndexOf resolves a column reference. A qualified reference must match
// alias and name; an unqualified one matches the first column by name.
func (s Schema) IndexOf(ref plan.ColumnRef) int {
	for i, col := range s.Columns {
		if col.Name != ref.Name {
			continue
		}
		if ref.Table == "" || col.Table == ref.Table {
			return i
		}
	}
	return -1
}

// Row holds one value per schema column.
type Row []any

// Cost tracks how much work a query did.
type Cost struct {
	RowsProcessed int `json:"rowsProcessed"`
}

// Result is the output of executing a plan.
type Result struct {
	Schema Schema `json:"schema"`
	Rows   []Row  `json:"rows"`
	Cost   Cost   `json:"cost"`
}

// ColumnNotFoundError reports a reference to a column absent from the
// schema in scope.
type ColumnNotFoundError struct {
	Ref plan.ColumnRef
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %s not found in schema", e.Ref)
}

// TypeError reports a value of the wrong type for an operation.
type TypeError struct {
	Expected string
	Value    any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, plan.FormatValue(e.Value))
}

// Run executes a plan against the catalog.
func Run(n plan.Node, cat *catalog.Catalog) (*Result, error) {
	e := &executor{cat: cat}
	return e.run(n)
}

type executor struct {
	cat *catalog.Catalog
}

func (e *executor) run(n plan.Node) (*Result, error) {
	switch t := n.(type) {
	case plan.Scan:
		return e.tableScan(t)
	case plan.IndexScan:
		return e.indexScan(t)
	case plan.Filter:
		res, err := e.run(t.Input)
		if err != nil {
			return nil, err
		}
		kept := res.Rows[:0:0]
		for _, row := range res.Rows {
			res.Cost.RowsProcessed++
			ok, err := applyPredicate(row, res.Schema, t.Pred)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, row)
			}
		}
		res.Rows = kept
		return res, nil
	case plan.Join:
		left, err := e.run(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.run(t.Right)
		if err != nil {
			return nil, err
		}
		return hashJoin(left, right, t.On, t.Type)
	case plan.Project:
		res, err := e.run(t.Input)
		if err != nil {
			return nil, err
		}
		return project(res, t.Fields)
	case plan.Sort:
		res, err := e.run(t.Input)
		if err != nil {
			return nil, err
		}
		if err := sortRows(res, t.Keys); err != nil {
			return nil, err
		}
		return res, nil
	case plan.Limit:
		res, err := e.run(t.Input)
		if err != nil {
			return nil, err
		}
		if int64(len(res.Rows)) > t.N {
			res.Rows = res.Rows[:t.N]
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unsupported plan node %T", n)
	}
}
