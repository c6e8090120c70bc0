package engine

import (
	"github.com/siftql/sift/internal/plan"
)

// project evaluates the field list per row. Aggregate fields are computed
// once over the whole input; when every field is an aggregate the result
// collapses to a single row of totals.
func project(in *Result, fields []plan.Expr) (*Result, error) {
	schema, err := projectSchema(in.Schema, fields)
	if err != nil {
		return nil, err
	}

	aggregates := make(map[int]any)
	for i, f := range fields {
		if isAggregate(f) {
			v, err := evalAggregate(in.Rows, in.Schema, f)
			if err != nil {
				return nil, err
			}
			aggregates[i] = v
		}
	}

	if len(fields) > 0 && len(aggregates) == len(fields) {
		row := make(Row, len(fields))
		for i := range fields {
			row[i] = aggregates[i]
		}
		return &Result{Schema: schema, Rows: []Row{row}, Cost: in.Cost}, nil
	}

	rows := make([]Row, 0, len(in.Rows))
	for _, row := range in.Rows {
		in.Cost.RowsProcessed++
		out := make(Row, len(fields))
		for i, f := range fields {
			if v, ok := aggregates[i]; ok {
				out[i] = v
				continue
			}
			v, err := evalExpr(row, in.Schema, f)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		rows = append(rows, out)
	}

	return &Result{Schema: schema, Rows: rows, Cost: in.Cost}, nil
}

// projectSchema names the output columns. Plain column references keep
// their schema column; computed fields are named by their query text.
func projectSchema(schema Schema, fields []plan.Expr) (Schema, error) {
	columns := make([]Column, len(fields))
	for i, f := range fields {
		col, err := columnForField(schema, f)
		if err != nil {
			return Schema{}, err
		}
		columns[i] = col
	}
	return Schema{Columns: columns}, nil
}

func columnForField(schema Schema, f plan.Expr) (Column, error) {
	switch t := f.(type) {
	case plan.ColumnRef:
		idx := schema.IndexOf(t)
		if idx < 0 {
			return Column{}, &ColumnNotFoundError{Ref: t}
		}
		return schema.Columns[idx], nil
	case plan.Paren:
		return columnForField(schema, t.Expr)
	default:
		return Column{Name: f.String()}, nil
	}
}

func isAggregate(e plan.Expr) bool {
	switch t := e.(type) {
	case plan.Call:
		return true
	case plan.Binary:
		return isAggregate(t.Left) || isAggregate(t.Right)
	case plan.Paren:
		return isAggregate(t.Expr)
	default:
		return false
	}
}

// evalAggregate evaluates an aggregate field over all rows. Column
// references may only appear inside the aggregate call itself; outside it
// there is no single row to read them from.
func evalAggregate(rows []Row, schema Schema, e plan.Expr) (any, error) {
	switch t := e.(type) {
	case plan.Literal:
		return t.Value, nil
	case plan.Paren:
		return evalAggregate(rows, schema, t.Expr)
	case plan.Binary:
		left, err := evalAggregate(rows, schema, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := evalAggregate(rows, schema, t.Right)
		if err != nil {
			return nil, err
		}
		return applyOp(left, t.Op, right)
	case plan.ColumnRef:
		return nil, &TypeError{
			Expected: "aggregate or literal alongside an aggregate",
			Value:    t.String(),
		}
	case plan.Call:
		return evalCall(rows, schema, t)
	default:
		return nil, &TypeError{Expected: "aggregate expression", Value: e}
	}
}

func evalCall(rows []Row, schema Schema, call plan.Call) (any, error) {
	if call.Star {
		return int64(len(rows)), nil
	}
	arg := call.Args[0]

	switch call.Func {
	case plan.FuncSum:
		var total int64
		for _, row := range rows {
			v, err := evalExpr(row, schema, arg)
			if err != nil {
				return nil, err
			}
			n, err := asInt(v)
			if err != nil {
				return nil, err
			}
			total += n
		}
		return total, nil
	case plan.FuncCount:
		var count int64
		for _, row := range rows {
			v, err := evalExpr(row, schema, arg)
			if err != nil {
				return nil, err
			}
			if v != nil {
				count++
			}
		}
		return count, nil
	default:
		return nil, &TypeError{Expected: "aggregate function", Value: call.String()}
	}
}
