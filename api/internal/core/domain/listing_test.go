package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_MarshalJSONRoundsRating(t *testing.T) {
	l := Listing{ID: uuid.New(), Slug: "a", Rating: 4.1429, ReviewCount: 7, Tags: []string{"x"}}

	for _, v := range []any{l, &l, []Listing{l}} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"rating":4.14`)
		assert.NotContains(t, string(raw), `4.1429`)
		assert.Contains(t, string(raw), `"slug":"a"`)
	}
	assert.Equal(t, 4.1429, l.Rating, "stored precision is untouched")
}
