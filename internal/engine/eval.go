package engine

import (
	"reflect"

	"github.com/siftql/sift/internal/plan"
)

// applyPredicate evaluates a WHERE expression for one row. Anything other
// than a boolean result is an error.
func applyPredicate(row Row, schema Schema, pred plan.Expr) (bool, error) {
	v, err := evalExpr(row, schema, pred)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Expected: "boolean predicate", Value: v}
	}
	return b, nil
}

func evalExpr(row Row, schema Schema, e plan.Expr) (any, error) {
	switch t := e.(type) {
	case plan.Literal:
		return t.Value, nil
	case plan.ColumnRef:
		idx := schema.IndexOf(t)
		if idx < 0 {
			return nil, &ColumnNotFoundError{Ref: t}
		}
		return row[idx], nil
	case plan.Paren:
		return evalExpr(row, schema, t.Expr)
	case plan.Binary:
		left, err := evalExpr(row, schema, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := evalExpr(row, schema, t.Right)
		if err != nil {
			return nil, err
		}
		return applyOp(left, t.Op, right)
	case plan.Call:
		return nil, &TypeError{Expected: "scalar expression", Value: t.String()}
	default:
		return nil, &TypeError{Expected: "expression", Value: e}
	}
}

func applyOp(left any, op plan.Op, right any) (any, error) {
	switch op {
	case plan.OpEq:
		return equalValues(left, right), nil
	case plan.OpGt, plan.OpGte, plan.OpLt, plan.OpLte:
		l, err := asInt(left)
		if err != nil {
			return nil, err
		}
		r, err := asInt(right)
		if err != nil {
			return nil, err
		}
		switch op {
		case plan.OpGt:
			return l > r, nil
		case plan.OpGte:
			return l >= r, nil
		case plan.OpLt:
			return l < r, nil
		default:
			return l <= r, nil
		}
	case plan.OpAdd, plan.OpSub:
		l, err := asInt(left)
		if err != nil {
			return nil, err
		}
		r, err := asInt(right)
		if err != nil {
			return nil, err
		}
		if op == plan.OpAdd {
			return l + r, nil
		}
		return l - r, nil
	case plan.OpAnd, plan.OpOr:
		l, err := asBool(left)
		if err != nil {
			return nil, err
		}
		r, err := asBool(right)
		if err != nil {
			return nil, err
		}
		if op == plan.OpAnd {
			return l && r, nil
		}
		return l || r, nil
	default:
		return nil, &TypeError{Expected: "operator", Value: op.String()}
	}
}

// equalValues compares like JSON equality, with int64 and float64 unified
// so a value loaded as 82 matches a literal written as 82.0. Two int64
// values compare exactly; widening to float64 would collapse integers
// above 2^53.
func equalValues(a, b any) bool {
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			return ai == bi
		}
	}
	if af, ok := numeric(a); ok {
		bf, bok := numeric(b)
		return bok && af == bf
	}
	if _, ok := numeric(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func asInt(v any) (int64, error) {
	n, ok := v.(int64)
	if !ok {
		return 0, &TypeError{Expected: "integer", Value: v}
	}
	return n, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Expected: "boolean", Value: v}
	}
	return b, nil
}
