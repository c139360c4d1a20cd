package storage

// Storage schema. Every key is owned by exactly one repository; nothing
// outside this package reads or writes them raw.
const (
	keySessionID      = "session_id"
	keyConversation   = "conversation"
	keyLastActivity   = "last_activity"
	keySessionCreated = "session_created"
	keyUserConsent    = "user_consent"
	keyAuditLog       = "audit_log"
	keyCrisisEvents   = "crisis_events"
)
