package models

import "time"

// QueryHistoryRecord is one entry in a connection's rolling query history.
type QueryHistoryRecord struct {
	Query     string    `json:"query"`
	Type      QueryType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
