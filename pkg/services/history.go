package services

import (
	"sync"
	"time"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// QueryHistory is a thread-safe bounded log of executed queries, most
// recent first.
type QueryHistory struct {
	mu       sync.Mutex
	records  []models.QueryHistoryRecord
	capacity int
}

// NewQueryHistory creates a history holding up to capacity records.
func NewQueryHistory(capacity int) *QueryHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &QueryHistory{capacity: capacity}
}

// Add prepends a record, evicting the oldest when full.
func (h *QueryHistory) Add(query string, queryType models.QueryType) {
	record := models.QueryHistoryRecord{
		Query:     query,
		Type:      queryType,
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append([]models.QueryHistoryRecord{record}, h.records...)
	if len(h.records) > h.capacity {
		h.records = h.records[:h.capacity]
	}
}

// List returns a copy of the records, most recent first.
func (h *QueryHistory) List() []models.QueryHistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.QueryHistoryRecord, len(h.records))
	copy(out, h.records)
	return out
}
