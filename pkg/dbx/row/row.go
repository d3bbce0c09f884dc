// Package row implements the dynamic, name-indexed heterogeneous record
// materialized from a result set whose column types were not known to the
// caller at bind time (spec.md §3 "Row", §4.5).
package row

import (
	"time"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// ColumnProperty describes one column's name, logical type, and whatever
// size/precision/scale/nullability metadata the driver reported.
type ColumnProperty struct {
	Name      string
	Type      backend.LogicalType
	Size      int
	Precision int
	Scale     int
	Nullable  bool
}

// Holder is the heterogeneous value slot for one column of one fetched
// row. Exactly one of the typed fields is meaningful, selected by the
// parallel ColumnProperty's Type.
type Holder struct {
	Str    string
	Num    float64
	Int    int64
	UInt   uint64
	Time   time.Time
}

// Row is the ordered column-properties list plus a parallel holder and
// indicator list, plus a name->index map built from the column names the
// backend reported. Invariant: len(Properties) == len(Holders) ==
// len(Indicators), and the name map is consistent with Properties.
type Row struct {
	Properties []ColumnProperty
	Holders    []Holder
	Indicators []indicator.Indicator

	byName map[string]int
}

// New creates an empty Row, populated incrementally by the statement core
// during dynamic description (spec.md §4.2 step 4).
func New() *Row {
	return &Row{byName: make(map[string]int)}
}

// AddColumn appends one described column and its (initially empty) holder
// and indicator slots, keeping all three parallel lists in lockstep.
func (r *Row) AddColumn(prop ColumnProperty) {
	r.Properties = append(r.Properties, prop)
	r.Holders = append(r.Holders, Holder{})
	r.Indicators = append(r.Indicators, indicator.NoData)
	// Name lookups are case-sensitive; the map key is whatever the
	// backend reported, exactly as spec.md §3 requires. A later column
	// with a duplicate name shadows the earlier one, matching how SQL
	// result sets themselves resolve ambiguous unqualified names.
	r.byName[prop.Name] = len(r.Properties) - 1
}

// Size returns the column count.
func (r *Row) Size() int { return len(r.Properties) }

// IndexOf returns the column index for name, and false if absent.
func (r *Row) IndexOf(name string) (int, bool) {
	i, ok := r.byName[name]
	return i, ok
}

// Indicator returns the indicator for the column at index i.
func (r *Row) Indicator(i int) indicator.Indicator { return r.Indicators[i] }

// IndicatorByName returns the indicator for the named column.
func (r *Row) IndicatorByName(name string) (indicator.Indicator, bool) {
	i, ok := r.byName[name]
	if !ok {
		return indicator.NoData, false
	}
	return r.Indicators[i], true
}

// reset clears holders/indicators in place before the next fetch refills
// them, per spec.md §4.5: "every subsequent fetch refreshes the Row's
// holders in place."
func (r *Row) reset() {
	for i := range r.Holders {
		r.Holders[i] = Holder{}
		r.Indicators[i] = indicator.NoData
	}
}

// Reset is exported for the statement core to call before re-describing
// or before the first postFetch of a new execute.
func (r *Row) Reset() { r.reset() }
