package models

import "time"

type Entry struct {
	ID        int64
	AccountID int64
	Title     string
	Body      string
	CreatedAt time.Time
}

// AccountStats aggregates per-tenant usage. It is computed under the tenant's
// own scope, so the numbers only ever cover that tenant's rows.
type AccountStats struct {
	AccountID    int64 `json:"account_id"`
	EntryCount   int64 `json:"entry_count"`
	EntryBytes   int64 `json:"entry_bytes"`
	LiveSessions int64 `json:"live_sessions"`
}
