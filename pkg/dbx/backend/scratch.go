package backend

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// AssignScalar copies a raw value the driver client library returned
// (one of int64, uint64, float64, string, []byte, time.Time, or nil for
// SQL NULL) into dst, the user-owned destination pointer DefineByPos
// received. Every backend's IntoTypeBackend.PostFetch funnels its
// driver-native result through this so the five drivers agree on
// coercion rules (e.g. a numeric column fetched into a string
// destination formats via strconv, not fmt's default verb).
func AssignScalar(dst any, raw any, t ExchangeType) error {
	switch d := dst.(type) {
	case *string:
		*d = scalarToString(raw)
	case *[]byte:
		*d = scalarToBytes(raw)
	case *byte:
		b := scalarToBytes(raw)
		if len(b) > 0 {
			*d = b[0]
		}
	case *int16:
		n, err := scalarToInt64(raw)
		if err != nil {
			return err
		}
		*d = int16(n)
	case *int32:
		n, err := scalarToInt64(raw)
		if err != nil {
			return err
		}
		*d = int32(n)
	case *int64:
		n, err := scalarToInt64(raw)
		if err != nil {
			return err
		}
		*d = n
	case *uint64:
		n, err := scalarToUint64(raw)
		if err != nil {
			return err
		}
		*d = n
	case *float64:
		f, err := scalarToFloat64(raw)
		if err != nil {
			return err
		}
		*d = f
	case *time.Time:
		ts, err := scalarToTime(raw)
		if err != nil {
			return err
		}
		*d = ts
	default:
		return fmt.Errorf("backend: AssignScalar: unsupported destination type %T for exchange type %v", dst, t)
	}
	return nil
}

// AssignScalarToString formats a driver-native raw value the same way
// scalarToString does, for backends (sqlite) whose representative
// behavior caches rows as text rather than as native Go values.
func AssignScalarToString(raw any) string { return scalarToString(raw) }

func scalarToString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func scalarToBytes(raw any) []byte {
	switch v := raw.(type) {
	case nil:
		return nil
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return []byte(scalarToString(raw))
	}
}

func scalarToInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("backend: cannot convert %T to int64", raw)
	}
}

func scalarToUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	case []byte:
		return strconv.ParseUint(string(v), 10, 64)
	case string:
		return strconv.ParseUint(v, 10, 64)
	default:
		return 0, fmt.Errorf("backend: cannot convert %T to uint64", raw)
	}
}

func scalarToFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("backend: cannot convert %T to float64", raw)
	}
}

func scalarToTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case []byte:
		return parseTimeLike(string(v))
	case string:
		return parseTimeLike(v)
	default:
		return time.Time{}, fmt.Errorf("backend: cannot convert %T to time.Time", raw)
	}
}

func parseTimeLike(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var firstErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// IsNullRaw reports whether a value returned through the scratch path
// represents SQL NULL.
func IsNullRaw(raw any) bool { return raw == nil }

// AssignVectorSlot writes raw into the i-th element of dest, the *[]T
// pointer a vector Into adapter passed to DefineByPos, using the same
// coercion rules as AssignScalar. Every bulk-fetch backend calls this
// once per row instead of assigning straight into dest, since dest is a
// slice pointer rather than a scalar one.
func AssignVectorSlot(dest any, i int, raw any, t ExchangeType) error {
	slice, err := addressableSlice(dest)
	if err != nil {
		return err
	}
	if i < 0 || i >= slice.Len() {
		return fmt.Errorf("backend: vector slot %d out of range (size %d)", i, slice.Len())
	}
	return AssignScalar(slice.Index(i).Addr().Interface(), raw, t)
}

// VectorElementAt reads the i-th element of src, the *[]T pointer a
// vector Use adapter passed to BindByPos/BindByName, as a plain value
// suitable for a driver query argument. A client-side bulk-execute loop
// calls this once per row to pull that row's bound value out of the
// caller's vector.
func VectorElementAt(src any, i int) (any, error) {
	slice, err := addressableSlice(src)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= slice.Len() {
		return nil, fmt.Errorf("backend: vector index %d out of range (size %d)", i, slice.Len())
	}
	return slice.Index(i).Interface(), nil
}

func addressableSlice(ptr any) (reflect.Value, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("backend: expected a non-nil slice pointer, got %T", ptr)
	}
	return rv.Elem(), nil
}
