package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a binary operator in a filter or projection expression.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpGte
	OpLt
	OpLte
	OpAdd
	OpSub
	OpAnd
	OpOr
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}

// Func identifies a built-in function.
type Func int

const (
	FuncSum Func = iota
	FuncCount
)

func (f Func) String() string {
	switch f {
	case FuncSum:
		return "SUM"
	case FuncCount:
		return "COUNT"
	default:
		return "?"
	}
}

// Expr is a scalar expression evaluated against a row.
type Expr interface {
	fmt.Stringer
	expr()
}

// ColumnRef references a column, optionally qualified by a table alias.
type ColumnRef struct {
	Table string
	Name  string
}

// Literal is a constant value: int64, float64, string, bool, or nil.
type Literal struct {
	Value any
}

// Binary applies an operator to two sub-expressions.
type Binary struct {
	Left  Expr
	Op    Op
	Right Expr
}

// Paren preserves explicit grouping from the query text.
type Paren struct {
	Expr Expr
}

// Call is a function invocation. Star marks COUNT(*).
type Call struct {
	Func Func
	Args []Expr
	Star bool
}

func (ColumnRef) expr() {}
func (Literal) expr()   {}
func (Binary) expr()    {}
func (Paren) expr()     {}
func (Call) expr()      {}

func (c ColumnRef) String() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

func (l Literal) String() string {
	return FormatValue(l.Value)
}

func (b Binary) String() string {
	return b.Left.String() + " " + b.Op.String() + " " + b.Right.String()
}

func (p Paren) String() string {
	return "(" + p.Expr.String() + ")"
}

func (c Call) String() string {
	if c.Star {
		return c.Func.String() + "(*)"
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func.String() + "(" + strings.Join(args, ", ") + ")"
}

// FormatValue renders a literal value the way it would appear in a query.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
