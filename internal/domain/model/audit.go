package model

import "time"

// AuditEntry is one record in the append-only compliance ledger. Entries
// are evicted FIFO at the repository cap and swept by age independently
// of conversation retention.
type AuditEntry struct {
	ID         string         `json:"id"`
	Event      string         `json:"event"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id"`
	Anonymized bool           `json:"anonymized"`
}
