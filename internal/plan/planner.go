package plan

import (
	"github.com/siftql/sift/internal/catalog"
)

// Optimize rewrites Filter(Scan) into Filter(IndexScan) wherever a
// declared index is fully covered by equality comparisons against
// literals in the filter's top-level conjunction. The filter always stays
// above the scan: the index narrows the rows, the predicate decides.
func Optimize(n Node, cat *catalog.Catalog) Node {
	switch t := n.(type) {
	case Filter:
		if scan, ok := t.Input.(Scan); ok {
			if is := matchIndex(scan, t.Pred, cat); is != nil {
				return Filter{Input: *is, Pred: t.Pred}
			}
		}
		return Filter{Input: Optimize(t.Input, cat), Pred: t.Pred}
	case Join:
		return Join{
			Type:  t.Type,
			Left:  Optimize(t.Left, cat),
			Right: Optimize(t.Right, cat),
			On:    t.On,
		}
	case Project:
		return Project{Input: Optimize(t.Input, cat), Fields: t.Fields}
	case Sort:
		return Sort{Input: Optimize(t.Input, cat), Keys: t.Keys}
	case Limit:
		return Limit{Input: Optimize(t.Input, cat), N: t.N}
	default:
		return n
	}
}

func matchIndex(scan Scan, pred Expr, cat *catalog.Catalog) *IndexScan {
	table, err := cat.Table(scan.Table)
	if err != nil {
		return nil
	}

	eqs := equalityColumns(pred)
	if len(eqs) == 0 {
		return nil
	}

	for _, idx := range table.Indexes {
		key := make([]any, 0, len(idx.Columns))
		covered := true
		for _, col := range idx.Columns {
			v, ok := eqs[col]
			if !ok {
				covered = false
				break
			}
			key = append(key, v)
		}
		if covered {
			return &IndexScan{
				Table: scan.Table,
				Alias: scan.Alias,
				Index: idx.Name,
				Key:   key,
			}
		}
	}
	return nil
}

// equalityColumns collects column = literal comparisons reachable through
// the top-level AND conjunction of pred. Disjunctions contribute nothing;
// they cannot narrow an index lookup.
func equalityColumns(pred Expr) map[string]any {
	out := make(map[string]any)
	collectEqualities(pred, out)
	return out
}

func collectEqualities(e Expr, out map[string]any) {
	switch t := e.(type) {
	case Paren:
		collectEqualities(t.Expr, out)
	case Binary:
		if t.Op == OpAnd {
			collectEqualities(t.Left, out)
			collectEqualities(t.Right, out)
			return
		}
		if t.Op != OpEq {
			return
		}
		col, lit, ok := columnLiteral(t.Left, t.Right)
		if !ok {
			col, lit, ok = columnLiteral(t.Right, t.Left)
		}
		if !ok {
			return
		}
		if _, dup := out[col]; !dup {
			out[col] = lit
		}
	}
}

func columnLiteral(a, b Expr) (string, any, bool) {
	col, ok := unwrapParen(a).(ColumnRef)
	if !ok {
		return "", nil, false
	}
	lit, ok := unwrapParen(b).(Literal)
	if !ok {
		return "", nil, false
	}
	return col.Name, lit.Value, true
}

func unwrapParen(e Expr) Expr {
	for {
		p, ok := e.(Paren)
		if !ok {
			return e
		}
		e = p.Expr
	}
}
