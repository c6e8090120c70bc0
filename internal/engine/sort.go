package engine

import (
	"sort"

	"github.com/siftql/sift/internal/plan"
)

// IncomparableError reports an ORDER BY over values with no defined
// ordering, such as a string against a number.
type IncomparableError struct {
	A, B any
}

func (e *IncomparableError) Error() string {
	return "cannot order " + plan.FormatValue(e.A) + " against " + plan.FormatValue(e.B)
}

func sortRows(res *Result, keys []plan.SortKey) error {
	positions := make([]int, len(keys))
	for i, key := range keys {
		pos := res.Schema.IndexOf(key.Column)
		if pos < 0 {
			return &ColumnNotFoundError{Ref: key.Column}
		}
		positions[i] = pos
	}

	var sortErr error
	sort.SliceStable(res.Rows, func(i, j int) bool {
		res.Cost.RowsProcessed++
		for k, key := range keys {
			a := res.Rows[i][positions[k]]
			b := res.Rows[j][positions[k]]
			c, err := compareValues(a, b)
			if err != nil {
				if sortErr == nil {
					sortErr = err
				}
				return false
			}
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return sortErr
}

func compareValues(a, b any) (int, error) {
	if a == nil && b == nil {
		return 0, nil
	}

	if af, ok := numeric(a); ok {
		if bf, ok := numeric(b); ok {
			ai, aInt := a.(int64)
			bi, bInt := b.(int64)
			if aInt && bInt {
				switch {
				case ai < bi:
					return -1, nil
				case ai > bi:
					return 1, nil
				default:
					return 0, nil
				}
			}
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
		return 0, &IncomparableError{A: a, B: b}
	}

	switch at := a.(type) {
	case string:
		if bt, ok := b.(string); ok {
			switch {
			case at < bt:
				return -1, nil
			case at > bt:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case bool:
		if bt, ok := b.(bool); ok {
			switch {
			case at == bt:
				return 0, nil
			case !at:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}
	return 0, &IncomparableError{A: a, B: b}
}
