package adapter

import (
	"context"
	"time"

	"mentivio-widget/internal/domain/model"
)

// SessionStatus is the remote store's view of whether a session id still
// maps to live server-side state.
type SessionStatus struct {
	Active bool `json:"active"`
}

// RemoteMessage is one turn as the remote session export delivers it.
type RemoteMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`
	Emotion   string    `json:"emotion"`
}

type ChatRequest struct {
	Message   string                  `json:"message"`
	SessionID string                  `json:"session_id"`
	Language  model.LangCode          `json:"language"`
	Emotion   string                  `json:"emotion"`
	Context   []RemoteMessage         `json:"context"`
	State     model.ConversationState `json:"conversation_state"`
	Anonymous bool                    `json:"anonymous"`
}

type ChatReply struct {
	Response  string `json:"response"`
	Emotion   string `json:"emotion"`
	SessionID string `json:"session_id"`
}

type ComplianceStatus struct {
	HIPAACompliant bool `json:"hipaa_compliant"`
	GDPRCompliant  bool `json:"gdpr_compliant"`
	AuditLogging   bool `json:"audit_logging"`
}

type CrisisReport struct {
	Type      string            `json:"type"`
	Language  model.LangCode    `json:"language"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// RemoteBackend is the request/response contract with the wellness
// product's backend. Every call is timeout-bounded and cancellable; a
// network or decode failure surfaces as domain.ErrRemoteUnavailable.
type RemoteBackend interface {
	SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
	SessionExport(ctx context.Context, sessionID string) ([]RemoteMessage, error)
	SessionClear(ctx context.Context, sessionID string) error
	Chat(ctx context.Context, req ChatRequest) (ChatReply, error)
	ComplianceStatus(ctx context.Context) (ComplianceStatus, error)
	// ReportCrisis is fire-and-forget; failures are logged, never
	// propagated into the send path.
	ReportCrisis(ctx context.Context, report CrisisReport) error
}
