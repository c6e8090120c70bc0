package engine

import (
	"github.com/siftql/sift/internal/index"
	"github.com/siftql/sift/internal/plan"
)

// hashJoin builds a hash table over the right input's join column, then
// probes it once per left row. Bucket hits are re-checked against the
// actual values, so hash collisions never leak wrong rows. Output order
// follows the left input.
func hashJoin(left, right *Result, on plan.JoinOn, joinType plan.JoinType) (*Result, error) {
	cost := left.Cost
	cost.RowsProcessed += right.Cost.RowsProcessed

	leftPos := left.Schema.IndexOf(on.Left)
	if leftPos < 0 {
		return nil, &ColumnNotFoundError{Ref: on.Left}
	}
	rightPos := right.Schema.IndexOf(on.Right)
	if rightPos < 0 {
		return nil, &ColumnNotFoundError{Ref: on.Right}
	}

	buckets := make(map[uint64][]Row)
	for _, rrow := range right.Rows {
		cost.RowsProcessed++
		h := index.Hash([]any{rrow[rightPos]})
		buckets[h] = append(buckets[h], rrow)
	}

	rightWidth := len(right.Schema.Columns)
	var out []Row

	for _, lrow := range left.Rows {
		cost.RowsProcessed++
		lval := lrow[leftPos]
		matched := false

		for _, rrow := range buckets[index.Hash([]any{lval})] {
			if !equalValues(lval, rrow[rightPos]) {
				continue
			}
			matched = true
			combined := make(Row, 0, len(lrow)+rightWidth)
			combined = append(combined, lrow...)
			combined = append(combined, rrow...)
			out = append(out, combined)
		}

		if !matched && joinType == plan.JoinLeftOuter {
			combined := make(Row, 0, len(lrow)+rightWidth)
			combined = append(combined, lrow...)
			for i := 0; i < rightWidth; i++ {
				combined = append(combined, nil)
			}
			out = append(out, combined)
		}
	}

	columns := make([]Column, 0, len(left.Schema.Columns)+rightWidth)
	columns = append(columns, left.Schema.Columns...)
	columns = append(columns, right.Schema.Columns...)

	return &Result{
		Schema: Schema{Columns: columns},
		Rows:   out,
		Cost:   cost,
	}, nil
}
