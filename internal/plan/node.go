package plan

import (
	"fmt"
	"strings"
)

// JoinType distinguishes inner from left-outer joins.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeftOuter
)

func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "inner"
	case JoinLeftOuter:
		return "left outer"
	default:
		return "?"
	}
}

// JoinOn is the equi-join condition. Both sides name a single column; the
// right side is qualified with the right table's alias when one exists.
type JoinOn struct {
	Left  ColumnRef
	Right ColumnRef
}

// SortKey orders by one column, ascending unless Desc is set.
type SortKey struct {
	Column ColumnRef
	Desc   bool
}

// Node is a plan operator. The parser produces Scan/Filter/Join/Project/
// Sort/Limit trees; the planner may substitute IndexScan for Scan.
type Node interface {
	node()
}

// Scan reads every row of a table.
type Scan struct {
	Table string
	Alias string
}

// IndexScan reads only the rows a hash index maps to Key. Produced by the
// planner; the residual filter stays above it, so collisions are harmless.
type IndexScan struct {
	Table string
	Alias string
	Index string
	// Key holds one literal value per index column, in index column order.
	Key []any
}

// Filter keeps rows for which Pred evaluates to true.
type Filter struct {
	Input Node
	Pred  Expr
}

// Join combines two inputs on a single-column equality condition.
type Join struct {
	Type  JoinType
	Left  Node
	Right Node
	On    JoinOn
}

// Project evaluates Fields for each row. A nil Fields list never reaches
// the plan; SELECT * simply omits the Project node.
type Project struct {
	Input  Node
	Fields []Expr
}

// Sort orders rows by Keys.
type Sort struct {
	Input Node
	Keys  []SortKey
}

// Limit truncates the input to at most N rows.
type Limit struct {
	Input Node
	N     int64
}

func (Scan) node()      {}
func (IndexScan) node() {}
func (Filter) node()    {}
func (Join) node()      {}
func (Project) node()   {}
func (Sort) node()      {}
func (Limit) node()     {}

// Explain renders a plan as an indented tree, one operator per line.
func Explain(n Node) string {
	var b strings.Builder
	explain(&b, n, 0)
	return b.String()
}

func explain(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch t := n.(type) {
	case Scan:
		fmt.Fprintf(b, "%sScan %s%s\n", indent, t.Table, aliasSuffix(t.Alias))
	case IndexScan:
		keys := make([]string, len(t.Key))
		for i, v := range t.Key {
			keys[i] = FormatValue(v)
		}
		fmt.Fprintf(b, "%sIndexScan %s%s (%s = [%s])\n",
			indent, t.Table, aliasSuffix(t.Alias), t.Index, strings.Join(keys, ", "))
	case Filter:
		fmt.Fprintf(b, "%sFilter [%s]\n", indent, t.Pred)
		explain(b, t.Input, depth+1)
	case Join:
		fmt.Fprintf(b, "%sJoin [%s, on %s = %s]\n", indent, t.Type, t.On.Left, t.On.Right)
		explain(b, t.Left, depth+1)
		explain(b, t.Right, depth+1)
	case Project:
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = f.String()
		}
		fmt.Fprintf(b, "%sProject [%s]\n", indent, strings.Join(fields, ", "))
		explain(b, t.Input, depth+1)
	case Sort:
		keys := make([]string, len(t.Keys))
		for i, k := range t.Keys {
			dir := "asc"
			if k.Desc {
				dir = "desc"
			}
			keys[i] = k.Column.String() + " " + dir
		}
		fmt.Fprintf(b, "%sSort [%s]\n", indent, strings.Join(keys, ", "))
		explain(b, t.Input, depth+1)
	case Limit:
		fmt.Fprintf(b, "%sLimit [%d]\n", indent, t.N)
		explain(b, t.Input, depth+1)
	}
}

func aliasSuffix(alias string) string {
	if alias == "" {
		return ""
	}
	return " as " + alias
}
