package backend

import (
	"github.com/caspiandb/dbx/pkg/dbx/dxerr"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// ResolveScalar implements the five-step postFetch decision tree from
// spec.md §4.3 for a single scalar slot. Every driver backend's
// IntoTypeBackend.PostFetch calls this after it has asked the native
// client library whether the fetched value was NULL or truncated; convert
// is invoked only when a real value must be copied/parsed into the user's
// destination.
func ResolveScalar(
	gotData, calledFromFetch, nullReported, truncatedReported bool,
	convert func() error,
	ind *indicator.Indicator,
	column string,
) error {
	if calledFromFetch && !gotData {
		// Normal EOF; no action.
		return nil
	}

	if gotData && nullReported {
		if ind != nil {
			*ind = indicator.Null
			return nil
		}
		return dxerr.NewIndicatorMissingError(column, "null value fetched")
	}

	if gotData && truncatedReported {
		if ind != nil {
			*ind = indicator.Truncated
			return nil
		}
		return dxerr.NewIndicatorMissingError(column, "truncated value fetched")
	}

	if gotData {
		if err := convert(); err != nil {
			return err
		}
		if ind != nil {
			*ind = indicator.OK
		}
		return nil
	}

	// !gotData, not calledFromFetch (i.e. this was an execute()).
	if ind != nil {
		*ind = indicator.NoData
		return nil
	}
	return dxerr.NewIndicatorMissingError(column, "no data fetched")
}

// ResolveVectorSlot implements the analogous per-row decision for a
// bulk (vector) Into slot: there is no calledFromFetch/EOF branch because
// the statement core never calls vector postFetch once per slot after
// EOF -- VectorIntoBackend.Resize has already trimmed the vector to the
// actual row count before postFetch runs.
func ResolveVectorSlot(
	nullReported, truncatedReported bool,
	convert func() error,
	ind *indicator.Indicator,
	column string,
) error {
	if nullReported {
		if ind != nil {
			*ind = indicator.Null
			return nil
		}
		return dxerr.NewIndicatorMissingError(column, "null value fetched")
	}
	if truncatedReported {
		if ind != nil {
			*ind = indicator.Truncated
			return nil
		}
		return dxerr.NewIndicatorMissingError(column, "truncated value fetched")
	}
	if err := convert(); err != nil {
		return err
	}
	if ind != nil {
		*ind = indicator.OK
	}
	return nil
}
