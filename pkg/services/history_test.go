package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

func TestQueryHistoryMostRecentFirst(t *testing.T) {
	h := NewQueryHistory(10)

	h.Add("first", models.QueryTypeSQL)
	h.Add("second", models.QueryTypeDocument)
	h.Add("third", models.QueryTypeHybrid)

	records := h.List()
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].Query)
	assert.Equal(t, "second", records[1].Query)
	assert.Equal(t, "first", records[2].Query)
}

func TestQueryHistoryBounded(t *testing.T) {
	h := NewQueryHistory(3)

	for i := 0; i < 5; i++ {
		h.Add(fmt.Sprintf("query %d", i), models.QueryTypeSQL)
	}

	records := h.List()
	require.Len(t, records, 3)
	assert.Equal(t, "query 4", records[0].Query)
	assert.Equal(t, "query 2", records[2].Query)
}

func TestQueryHistoryListIsCopy(t *testing.T) {
	h := NewQueryHistory(5)
	h.Add("original", models.QueryTypeSQL)

	records := h.List()
	records[0].Query = "mutated"

	assert.Equal(t, "original", h.List()[0].Query)
}
