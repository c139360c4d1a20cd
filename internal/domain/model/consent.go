package model

import (
	"encoding/json"
	"time"
)

// ConsentRecord captures what the user agreed to. CrisisEscalation is not
// user-configurable: safety escalation happens regardless of analytics or
// storage preferences, so no code path may produce a record with it unset.
type ConsentRecord struct {
	Accepted          bool      `json:"accepted"`
	AnalyticsOptIn    bool      `json:"analytics_opt_in"`
	LocalStorageOptIn bool      `json:"local_storage_opt_in"`
	CrisisEscalation  bool      `json:"crisis_escalation"`
	Timestamp         time.Time `json:"timestamp"`
	Anonymous         bool      `json:"anonymous"`
}

func NewConsentRecord(accepted, analyticsOptIn, localStorageOptIn, anonymous bool) *ConsentRecord {
	return &ConsentRecord{
		Accepted:          accepted,
		AnalyticsOptIn:    analyticsOptIn,
		LocalStorageOptIn: localStorageOptIn,
		CrisisEscalation:  true,
		Timestamp:         time.Now(),
		Anonymous:         anonymous,
	}
}

// UnmarshalJSON forces CrisisEscalation back on even if a stored record
// was tampered with.
func (c *ConsentRecord) UnmarshalJSON(data []byte) error {
	type alias ConsentRecord
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	a.CrisisEscalation = true
	*c = ConsentRecord(a)
	return nil
}
