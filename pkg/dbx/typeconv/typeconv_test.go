package typeconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/caspiandb/dbx/pkg/dbx/values"
)

func TestExplodeUsesAllKinds(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := values.New()
	v.SetString("name", "ada")
	v.SetInt("age", 36)
	v.SetUint("id", 7)
	v.SetFloat("score", 9.5)
	v.SetTime("created", now)

	uses, err := ExplodeUses(v)
	assert.NoError(t, err)
	assert.Len(t, uses, 5)

	names := make([]string, len(uses))
	for i, u := range uses {
		names[i] = u.Name()
	}
	assert.Equal(t, []string{"name", "age", "id", "score", "created"}, names)
}

func TestExplodeUsesNullEntryStillBindsByName(t *testing.T) {
	v := values.New()
	v.SetInt("age", 1)
	v.SetNull("age")

	uses, err := ExplodeUses(v)
	assert.NoError(t, err)
	assert.Len(t, uses, 1)
	assert.Equal(t, "age", uses[0].Name())
}

func TestExplodeUsesEmptyValues(t *testing.T) {
	v := values.New()
	uses, err := ExplodeUses(v)
	assert.NoError(t, err)
	assert.Empty(t, uses)
}
