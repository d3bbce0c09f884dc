package values

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func TestSetAndGetScalars(t *testing.T) {
	v := New()
	v.SetString("name", "ada")
	v.SetInt("age", 36)
	v.SetUint("id", 7)
	v.SetFloat("score", 9.5)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v.SetTime("created", now)

	s, err := v.GetString("name")
	assert.NoError(t, err)
	assert.Equal(t, "ada", s)

	n, err := v.GetInt("age")
	assert.NoError(t, err)
	assert.Equal(t, int64(36), n)

	u, err := v.GetUint("id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), u)

	f, err := v.GetFloat("score")
	assert.NoError(t, err)
	assert.Equal(t, 9.5, f)

	tm, err := v.GetTime("created")
	assert.NoError(t, err)
	assert.True(t, now.Equal(tm))
}

func TestGetMissingColumnNoDefaultFails(t *testing.T) {
	v := New()
	_, err := v.GetString("missing")
	assert.Error(t, err)
}

func TestGetMissingColumnWithDefaultSucceeds(t *testing.T) {
	v := New()
	s, err := v.GetString("missing", "fallback")
	assert.NoError(t, err)
	assert.Equal(t, "fallback", s)
}

func TestNullColumnNoDefaultFails(t *testing.T) {
	v := New()
	v.SetString("name", "ada")
	v.SetNull("name")
	_, err := v.GetString("name")
	assert.Error(t, err)
	assert.True(t, v.IsNull("name"))
}

func TestNullColumnWithDefaultSucceeds(t *testing.T) {
	v := New()
	v.SetInt("age", 1)
	v.SetNull("age")
	n, err := v.GetInt("age", 99)
	assert.NoError(t, err)
	assert.Equal(t, int64(99), n)
}

func TestSetNullPreservesPriorKind(t *testing.T) {
	v := New()
	v.SetInt("age", 1)
	v.SetNull("age")
	kind, ok := v.Kind("age")
	assert.True(t, ok)
	assert.Equal(t, backend.LogicalInteger, kind)
}

func TestSetNullWithoutPriorDefaultsToString(t *testing.T) {
	v := New()
	v.SetNull("never_typed")
	kind, ok := v.Kind("never_typed")
	assert.True(t, ok)
	assert.Equal(t, backend.LogicalString, kind)
}

func TestSetOverwritesExistingEntryInPlace(t *testing.T) {
	v := New()
	v.SetInt("age", 1)
	v.SetInt("age", 2)
	assert.Equal(t, 1, v.Len())
	n, err := v.GetInt("age")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNamesPreservesInsertionOrder(t *testing.T) {
	v := New()
	v.SetString("b", "x")
	v.SetString("a", "y")
	assert.Equal(t, []string{"b", "a"}, v.Names())
}

func TestGetByIndex(t *testing.T) {
	v := New()
	v.SetString("first", "one")
	v.SetInt("second", 2)

	s, err := v.GetStringByIndex(0)
	assert.NoError(t, err)
	assert.Equal(t, "one", s)

	n, err := v.GetIntByIndex(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = v.GetStringByIndex(5)
	assert.Error(t, err)
}
