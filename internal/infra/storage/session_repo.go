package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/repository"
	ports "mentivio-widget/internal/domain/ports/storage"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps the session id and cached message log in the active
// backend. Writes are last-write-wins; Persist replaces the full log.
type SessionRepo struct {
	backend ports.Backend
	log     *zerolog.Logger
	now     func() time.Time
}

func NewSessionRepo(backend ports.Backend, logger *zerolog.Logger) *SessionRepo {
	repoLog := logger.With().Str("component", "SessionRepo").Logger()
	return &SessionRepo{backend: backend, log: &repoLog, now: time.Now}
}

// newSessionID mixes a millisecond timestamp with a short random suffix.
// Uniqueness is not cryptographic; the collision odds are accepted.
func (s *SessionRepo) newSessionID() string {
	return fmt.Sprintf("sess-%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

func (s *SessionRepo) GetOrCreateID(ctx context.Context) (string, error) {
	if id, ok := s.CurrentID(ctx); ok {
		return id, nil
	}
	id := s.newSessionID()
	if err := s.backend.Set(ctx, keySessionID, id); err != nil {
		return "", fmt.Errorf("store session id: %w", err)
	}
	nowMs := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.backend.Set(ctx, keySessionCreated, nowMs); err != nil {
		return "", fmt.Errorf("store session created: %w", err)
	}
	if err := s.Persist(ctx, []model.Message{}); err != nil {
		return "", err
	}
	s.log.Debug().Str("session_id", id).Msg("created session")
	return id, nil
}

func (s *SessionRepo) CurrentID(ctx context.Context) (string, bool) {
	id, ok, err := s.backend.Get(ctx, keySessionID)
	if err != nil || !ok || id == "" {
		return "", false
	}
	return id, true
}

func (s *SessionRepo) Persist(ctx context.Context, messages []model.Message) error {
	if messages == nil {
		messages = []model.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if err := s.backend.Set(ctx, keyConversation, string(data)); err != nil {
		return fmt.Errorf("store conversation: %w", err)
	}
	nowMs := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.backend.Set(ctx, keyLastActivity, nowMs); err != nil {
		return fmt.Errorf("store last activity: %w", err)
	}
	return nil
}

// Load swallows read and parse failures: prior data that cannot be read
// is treated as no prior data.
func (s *SessionRepo) Load(ctx context.Context) []model.Message {
	raw, ok, err := s.backend.Get(ctx, keyConversation)
	if err != nil || !ok {
		return []model.Message{}
	}
	var messages []model.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		s.log.Warn().Err(err).Msg("unparsable conversation cache, starting empty")
		return []model.Message{}
	}
	if messages == nil {
		return []model.Message{}
	}
	return messages
}

func (s *SessionRepo) Clear(ctx context.Context) error {
	for _, key := range []string{keySessionID, keyConversation, keyLastActivity, keySessionCreated} {
		if err := s.backend.Remove(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

func (s *SessionRepo) LastActivity(ctx context.Context) (time.Time, bool) {
	raw, ok, err := s.backend.Get(ctx, keyLastActivity)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (s *SessionRepo) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	messages := s.Load(ctx)
	kept := messages[:0]
	for _, m := range messages {
		if !m.Timestamp.Before(olderThan) {
			kept = append(kept, m)
		}
	}
	dropped := len(messages) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	// Persist refreshes last_activity, which a sweep must not do; write
	// the trimmed log directly.
	data, err := json.Marshal(kept)
	if err != nil {
		return 0, fmt.Errorf("marshal pruned conversation: %w", err)
	}
	if err := s.backend.Set(ctx, keyConversation, string(data)); err != nil {
		return 0, fmt.Errorf("store pruned conversation: %w", err)
	}
	return dropped, nil
}

func (s *SessionRepo) Scope() ports.Scope { return s.backend.Scope() }
