package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/siftql/sift/internal/catalog"
	"github.com/siftql/sift/internal/plan"
	"github.com/siftql/sift/internal/sql"
)

// run parses, optimizes, and executes a query against the demo catalog.
func run(t *testing.T, sqlText string) *Result {
	t.Helper()
	res, err := runErr(sqlText)
	if err != nil {
		t.Fatalf("running %q: %v", sqlText, err)
	}
	return res
}

func runErr(sqlText string) (*Result, error) {
	cat := catalog.Demo()
	node, err := sql.Parse(sqlText)
	if err != nil {
		return nil, err
	}
	return Run(plan.Optimize(node, cat), cat)
}

func TestScanAll(t *testing.T) {
	res := run(t, "SELECT * FROM animal")

	if len(res.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(res.Rows))
	}
	if res.Cost.RowsProcessed != 3 {
		t.Errorf("cost = %d, want 3", res.Cost.RowsProcessed)
	}
	want := Row{int64(1), "horse", int64(1)}
	if !reflect.DeepEqual(res.Rows[0], want) {
		t.Errorf("row 0 = %#v, want %#v", res.Rows[0], want)
	}
	wantCols := []Column{
		{Name: "animal_id"},
		{Name: "animal_name"},
		{Name: "species_id"},
	}
	if !reflect.DeepEqual(res.Schema.Columns, wantCols) {
		t.Errorf("schema = %#v, want %#v", res.Schema.Columns, wantCols)
	}
}

func TestFilterByString(t *testing.T) {
	res := run(t, "SELECT * FROM animal WHERE animal_name = 'dog'")

	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(res.Rows))
	}
	if !reflect.DeepEqual(res.Rows[0], Row{int64(2), "dog", int64(1)}) {
		t.Errorf("row = %#v", res.Rows[0])
	}
	// Full scan of 3 rows plus the filter visiting each.
	if res.Cost.RowsProcessed != 6 {
		t.Errorf("cost = %d, want 6", res.Cost.RowsProcessed)
	}
}

func TestIndexScanNarrowsCost(t *testing.T) {
	res := run(t, "SELECT * FROM animal WHERE animal_id = 2")

	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(res.Rows))
	}
	if !reflect.DeepEqual(res.Rows[0], Row{int64(2), "dog", int64(1)}) {
		t.Errorf("row = %#v", res.Rows[0])
	}
	// The index hands back one row; the residual filter re-checks it.
	if res.Cost.RowsProcessed != 2 {
		t.Errorf("cost = %d, want 2", res.Cost.RowsProcessed)
	}
}

func TestProjection(t *testing.T) {
	res := run(t, "SELECT animal_name FROM animal")

	want := []Row{{"horse"}, {"dog"}, {"snake"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
	if res.Cost.RowsProcessed != 6 {
		t.Errorf("cost = %d, want 6", res.Cost.RowsProcessed)
	}
	if got := res.Schema.Columns[0].Display(); got != "animal_name" {
		t.Errorf("column = %q, want %q", got, "animal_name")
	}
}

func TestArithmeticPredicate(t *testing.T) {
	res := run(t, "SELECT Title FROM Album WHERE AlbumId = (ArtistId + 1 + 1) - 1")

	want := []Row{{"Restless and Wild"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestFloatEquality(t *testing.T) {
	res := run(t, "SELECT * FROM Track WHERE UnitPrice = 0.99")
	if len(res.Rows) != 10 {
		t.Errorf("got %d rows, want 10", len(res.Rows))
	}

	// An integral column matches a float literal with the same value.
	res = run(t, "SELECT Title FROM Album WHERE ArtistId = 82.0")
	if !reflect.DeepEqual(res.Rows, []Row{{"Jagged Little Pill"}}) {
		t.Errorf("rows = %#v", res.Rows)
	}
}

func TestInnerJoin(t *testing.T) {
	res := run(t, "SELECT a.animal_name, s.species_name FROM animal a JOIN species s ON species_id")

	want := []Row{
		{"horse", "mammal"},
		{"dog", "mammal"},
		{"snake", "reptile"},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
	wantCols := []Column{
		{Table: "a", Name: "animal_name"},
		{Table: "s", Name: "species_name"},
	}
	if !reflect.DeepEqual(res.Schema.Columns, wantCols) {
		t.Errorf("schema = %#v, want %#v", res.Schema.Columns, wantCols)
	}
}

func TestLeftOuterJoin(t *testing.T) {
	res := run(t, "SELECT * FROM species s LEFT JOIN animal a ON species_id")

	want := []Row{
		{int64(1), "mammal", int64(1), "horse", int64(1)},
		{int64(1), "mammal", int64(2), "dog", int64(1)},
		{int64(2), "reptile", int64(3), "snake", int64(2)},
		{int64(3), "bird", nil, nil, nil},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestJoinThroughIndexedFilter(t *testing.T) {
	res := run(t, "SELECT al.Title, ar.Name FROM Album al JOIN Artist ar ON ArtistId WHERE al.AlbumId = 6")

	want := []Row{{"Jagged Little Pill", "Alanis Morissette"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestOrderByMultipleKeysWithLimit(t *testing.T) {
	res := run(t, "SELECT * FROM Track ORDER BY AlbumId ASC, Milliseconds DESC LIMIT 4")

	if len(res.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(res.Rows))
	}
	var ids []int64
	for _, row := range res.Rows {
		ids = append(ids, row[0].(int64))
	}
	want := []int64{1, 6, 2, 5}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("track ids = %v, want %v", ids, want)
	}
}

func TestOrderByStrings(t *testing.T) {
	res := run(t, "SELECT animal_name FROM animal ORDER BY animal_name")

	want := []Row{{"dog"}, {"horse"}, {"snake"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestAggregatesCollapseToOneRow(t *testing.T) {
	res := run(t, "SELECT SUM(Milliseconds), COUNT(*) FROM Track WHERE AlbumId = 6")

	want := []Row{{int64(700629), int64(3)}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
	wantNames := []string{"SUM(Milliseconds)", "COUNT(*)"}
	for i, name := range wantNames {
		if got := res.Schema.Columns[i].Display(); got != name {
			t.Errorf("column %d = %q, want %q", i, got, name)
		}
	}
}

func TestAggregatesOverEmptyInput(t *testing.T) {
	res := run(t, "SELECT COUNT(*), SUM(Milliseconds) FROM Track WHERE AlbumId = 99")

	want := []Row{{int64(0), int64(0)}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestCountSkipsNulls(t *testing.T) {
	res := run(t, "SELECT COUNT(a.animal_id) FROM species s LEFT JOIN animal a ON species_id")

	// The unmatched species row pads a.animal_id with NULL.
	want := []Row{{int64(3)}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestAggregateArithmetic(t *testing.T) {
	res := run(t, "SELECT COUNT(*) + 1 FROM animal")

	want := []Row{{int64(4)}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestMixedAggregateRepeatsPerRow(t *testing.T) {
	res := run(t, "SELECT animal_name, COUNT(*) FROM animal")

	want := []Row{
		{"horse", int64(3)},
		{"dog", int64(3)},
		{"snake", int64(3)},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("rows = %#v, want %#v", res.Rows, want)
	}
}

func TestRuntimeErrors(t *testing.T) {
	t.Run("non-boolean predicate", func(t *testing.T) {
		_, err := runErr("SELECT * FROM animal WHERE animal_name")
		var terr *TypeError
		if !errors.As(err, &terr) {
			t.Fatalf("error type %T, want *TypeError", err)
		}
		if terr.Expected != "boolean predicate" {
			t.Errorf("Expected = %q", terr.Expected)
		}
	})

	t.Run("comparison on strings", func(t *testing.T) {
		_, err := runErr("SELECT * FROM animal WHERE animal_name > 'a'")
		var terr *TypeError
		if !errors.As(err, &terr) {
			t.Fatalf("error type %T, want *TypeError", err)
		}
		if terr.Expected != "integer" {
			t.Errorf("Expected = %q", terr.Expected)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := runErr("SELECT missing FROM animal")
		var cerr *ColumnNotFoundError
		if !errors.As(err, &cerr) {
			t.Fatalf("error type %T, want *ColumnNotFoundError", err)
		}
	})

	t.Run("wrong alias qualifier", func(t *testing.T) {
		_, err := runErr("SELECT b.animal_name FROM animal a")
		var cerr *ColumnNotFoundError
		if !errors.As(err, &cerr) {
			t.Fatalf("error type %T, want *ColumnNotFoundError", err)
		}
	})

	t.Run("column beside aggregate", func(t *testing.T) {
		_, err := runErr("SELECT SUM(animal_id) + species_id FROM animal")
		var terr *TypeError
		if !errors.As(err, &terr) {
			t.Fatalf("error type %T, want *TypeError", err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := runErr("SELECT * FROM unicorn")
		var ute *catalog.UnknownTableError
		if !errors.As(err, &ute) {
			t.Fatalf("error type %T, want *UnknownTableError", err)
		}
	})
}

func TestEqualValues(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{int64(82), float64(82), true},
		{int64(82), int64(82), true},
		{int64(82), int64(83), false},
		// Adjacent integers above 2^53 stay distinct.
		{int64(9007199254740993), int64(9007199254740992), false},
		{int64(9007199254740993), int64(9007199254740993), true},
		{0.99, 0.99, true},
		{int64(1), "1", false},
		{"dog", "dog", true},
		{true, true, true},
		{nil, nil, true},
		{nil, int64(0), false},
	}
	for _, tt := range tests {
		if got := equalValues(tt.a, tt.b); got != tt.want {
			t.Errorf("equalValues(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareValuesIncomparable(t *testing.T) {
	_, err := compareValues("dog", int64(1))
	var ierr *IncomparableError
	if !errors.As(err, &ierr) {
		t.Fatalf("error type %T, want *IncomparableError", err)
	}
}

func TestSortIncomparableColumn(t *testing.T) {
	res := &Result{
		Schema: Schema{Columns: []Column{{Name: "v"}}},
		Rows:   []Row{{"dog"}, {int64(1)}},
	}
	err := sortRows(res, []plan.SortKey{{Column: plan.ColumnRef{Name: "v"}}})
	var ierr *IncomparableError
	if !errors.As(err, &ierr) {
		t.Fatalf("error type %T, want *IncomparableError", err)
	}
}
