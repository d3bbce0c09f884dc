// Package values implements the builder/accessor TypeConversion[T]
// implementations use to map a user type to or from a labeled set of
// column values (spec.md §3 "Values", §4.5).
package values

import (
	"fmt"
	"time"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/dxerr"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
	"github.com/caspiandb/dbx/pkg/dbx/row"
)

// Entry is one named, typed, possibly-NULL slot in a Values set. Kind
// records which of Holder's fields actually holds the value, since
// row.Holder itself carries no type tag.
type Entry struct {
	Name   string
	Kind   backend.LogicalType
	Holder row.Holder
	Ind    indicator.Indicator
}

// Values is a mapping from column name (or index) to a typed holder and
// an indicator. The core constructs one from a fetched Row when mapping
// into a user TypeConversion[T]; user code constructs one directly when
// converting a user type into Use adapters for insert/update.
type Values struct {
	entries []Entry
	byName  map[string]int
}

// New creates an empty, user-built Values set (the "to Use adapters"
// direction of TypeConversion[T]).
func New() *Values {
	return &Values{byName: make(map[string]int)}
}

// FromRow builds a Values view over a fetched Row (the "from fetched row"
// direction of TypeConversion[T]).
func FromRow(r *row.Row) *Values {
	v := New()
	for i, prop := range r.Properties {
		v.set(prop.Name, prop.Type, r.Holders[i], r.Indicators[i])
	}
	return v
}

func (v *Values) set(name string, kind backend.LogicalType, h row.Holder, ind indicator.Indicator) {
	e := Entry{Name: name, Kind: kind, Holder: h, Ind: ind}
	if i, ok := v.byName[name]; ok {
		v.entries[i] = e
		return
	}
	v.byName[name] = len(v.entries)
	v.entries = append(v.entries, e)
}

// SetString sets a non-NULL string column.
func (v *Values) SetString(name, s string) {
	v.set(name, backend.LogicalString, row.Holder{Str: s}, indicator.OK)
}

// SetInt sets a non-NULL integer column.
func (v *Values) SetInt(name string, n int64) {
	v.set(name, backend.LogicalInteger, row.Holder{Int: n}, indicator.OK)
}

// SetUint sets a non-NULL unsigned-long column.
func (v *Values) SetUint(name string, n uint64) {
	v.set(name, backend.LogicalUnsignedLong, row.Holder{UInt: n}, indicator.OK)
}

// SetFloat sets a non-NULL double column.
func (v *Values) SetFloat(name string, f float64) {
	v.set(name, backend.LogicalDouble, row.Holder{Num: f}, indicator.OK)
}

// SetTime sets a non-NULL date column.
func (v *Values) SetTime(name string, t time.Time) {
	v.set(name, backend.LogicalDate, row.Holder{Time: t}, indicator.OK)
}

// SetNull marks name as present but NULL, keeping kind as whichever the
// column's prior (or subsequently set) type is; a never-typed NULL
// defaults to LogicalString, matching a plain text NULL column.
func (v *Values) SetNull(name string) {
	kind := backend.LogicalString
	if e, ok := v.entry(name); ok {
		kind = e.Kind
	}
	v.set(name, kind, row.Holder{}, indicator.Null)
}

// Names returns the entries' names in insertion/column order.
func (v *Values) Names() []string {
	names := make([]string, len(v.entries))
	for i, e := range v.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (v *Values) Len() int { return len(v.entries) }

func (v *Values) entry(name string) (Entry, bool) {
	i, ok := v.byName[name]
	if !ok {
		return Entry{}, false
	}
	return v.entries[i], true
}

func (v *Values) entryAt(index int) (Entry, bool) {
	if index < 0 || index >= len(v.entries) {
		return Entry{}, false
	}
	return v.entries[index], true
}

// GetString returns the named column as a string. With no default, a
// NULL or absent column fails with an error naming the column, per
// spec.md §4.5's guarantee. A default skips that failure.
func (v *Values) GetString(name string, def ...string) (string, error) {
	e, ok := v.entry(name)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return "", columnError(name, ok)
	}
	return e.Holder.Str, nil
}

// GetInt returns the named column as an int64.
func (v *Values) GetInt(name string, def ...int64) (int64, error) {
	e, ok := v.entry(name)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, columnError(name, ok)
	}
	return e.Holder.Int, nil
}

// GetUint returns the named column as a uint64.
func (v *Values) GetUint(name string, def ...uint64) (uint64, error) {
	e, ok := v.entry(name)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, columnError(name, ok)
	}
	return e.Holder.UInt, nil
}

// GetFloat returns the named column as a float64.
func (v *Values) GetFloat(name string, def ...float64) (float64, error) {
	e, ok := v.entry(name)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, columnError(name, ok)
	}
	return e.Holder.Num, nil
}

// GetTime returns the named column as a time.Time.
func (v *Values) GetTime(name string, def ...time.Time) (time.Time, error) {
	e, ok := v.entry(name)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return time.Time{}, columnError(name, ok)
	}
	return e.Holder.Time, nil
}

// GetStringByIndex is the position-based counterpart used by
// stream-like TypeConversion[T] implementations (spec.md §4.5's third
// shape).
func (v *Values) GetStringByIndex(index int, def ...string) (string, error) {
	e, ok := v.entryAt(index)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return "", columnIndexError(index, ok)
	}
	return e.Holder.Str, nil
}

// GetIntByIndex is the position-based counterpart for int64 columns.
func (v *Values) GetIntByIndex(index int, def ...int64) (int64, error) {
	e, ok := v.entryAt(index)
	if !ok || e.Ind == indicator.Null {
		if len(def) > 0 {
			return def[0], nil
		}
		return 0, columnIndexError(index, ok)
	}
	return e.Holder.Int, nil
}

// IsNull reports whether the named column is present and NULL.
func (v *Values) IsNull(name string) bool {
	e, ok := v.entry(name)
	return ok && e.Ind == indicator.Null
}

// Kind reports the named entry's logical type, for callers (such as
// ExplodeUses) that must pick an adapter type matching what was actually
// stored rather than guessing.
func (v *Values) Kind(name string) (backend.LogicalType, bool) {
	e, ok := v.entry(name)
	return e.Kind, ok
}

func columnError(name string, present bool) error {
	if !present {
		return fmt.Errorf("values: column %q not present: %w", name, dxerr.ErrIndicatorMissing)
	}
	return dxerr.NewIndicatorMissingError(name, "null value fetched")
}

func columnIndexError(index int, present bool) error {
	if !present {
		return fmt.Errorf("values: column index %d not present: %w", index, dxerr.ErrIndicatorMissing)
	}
	return dxerr.NewIndicatorMissingError(fmt.Sprintf("#%d", index), "null value fetched")
}
