// File: internal/usecase/pipeline_uc.go
package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/crisis"
	"mentivio-widget/internal/domain"
	"mentivio-widget/internal/domain/model"
	"mentivio-widget/internal/domain/ports/adapter"
	"mentivio-widget/internal/domain/ports/repository"
	"mentivio-widget/internal/infra/logging"
	"mentivio-widget/internal/infra/metrics"
)

// Compile-time check
var _ PipelineUseCase = (*pipelineUC)(nil)

// Localizer is the slice of the translator the pipeline needs.
type Localizer interface {
	T(key string, args ...interface{}) string
}

// EmergencyView is the tier-specific copy the surface renders while the
// input is disabled.
type EmergencyView struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	Ack           string `json:"ack,omitempty"`
	ContinueLabel string `json:"continue_label,omitempty"`
}

// CrisisOutcome reports a classifier hit back to the caller along with
// the view to show and whether input must stay locked.
type CrisisOutcome struct {
	Tier        model.Tier
	PatternID   string
	View        EmergencyView
	InputLocked bool
}

// SendOutcome is everything one send produced. Reply is what the surface
// displays; it is only part of the persisted log when Persisted is set
// (canned fallbacks and safety acknowledgments are display-only).
type SendOutcome struct {
	UserMessage model.Message
	Reply       model.Message
	Persisted   bool
	Crisis      *CrisisOutcome
}

// Hooks are the surface-owned side effects the intent dispatcher fires.
// Nil hooks are skipped; everything else about dispatch stays testable
// without a UI.
type Hooks struct {
	ClearTyping       func()
	ShowEmergencyView func(tier model.Tier, view EmergencyView)
	LockInput         func()
}

// PipelineUseCase sequences one outgoing message: classify, persist,
// remote call, persist. Classification always completes before any
// network work starts.
type PipelineUseCase interface {
	Send(ctx context.Context, text string) (*SendOutcome, error)
	SetHooks(hooks Hooks)
	// AbortInFlight cancels the pending chat call, if any. Safe to call
	// when nothing is in flight or the call already finished.
	AbortInFlight()
}

type pipelineUC struct {
	sessions      repository.SessionRepository
	remote        adapter.RemoteBackend
	detector      *crisis.Detector
	crisisLog     repository.CrisisLogRepository
	audit         AuditUseCase
	loc           Localizer
	lang          model.LangCode
	anonymous     bool
	contextWindow int
	dev           bool
	log           *zerolog.Logger

	hooks Hooks

	mu             sync.Mutex
	inflightCancel context.CancelFunc
}

func NewPipelineUseCase(
	sessions repository.SessionRepository,
	remote adapter.RemoteBackend,
	detector *crisis.Detector,
	crisisLog repository.CrisisLogRepository,
	audit AuditUseCase,
	loc Localizer,
	lang model.LangCode,
	anonymous bool,
	contextWindow int,
	dev bool,
	logger *zerolog.Logger,
) *pipelineUC {
	ucLog := logger.With().Str("component", "PipelineUC").Logger()
	return &pipelineUC{
		sessions:      sessions,
		remote:        remote,
		detector:      detector,
		crisisLog:     crisisLog,
		audit:         audit,
		loc:           loc,
		lang:          lang,
		anonymous:     anonymous,
		contextWindow: contextWindow,
		dev:           dev,
		log:           &ucLog,
	}
}

func (p *pipelineUC) SetHooks(hooks Hooks) {
	p.hooks = hooks
}

func (p *pipelineUC) Send(ctx context.Context, text string) (*SendOutcome, error) {
	defer logging.TraceDuration(p.log, "Pipeline.Send")()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Classification runs to completion before anything touches the
	// network for this message.
	result := p.detector.Classify(text, p.lang)
	if result.IsCrisis() {
		p.dispatch(ctx, result, text)
	}

	emotion := crisis.TagEmotion(text, p.lang)
	userMsg := model.NewUserMessage(text, p.lang, emotion)

	sendSessionID, err := p.sessions.GetOrCreateID(ctx)
	if err != nil {
		return nil, err
	}
	messages := append(p.sessions.Load(ctx), userMsg)
	if err := p.sessions.Persist(ctx, messages); err != nil {
		return nil, err
	}

	if result.Tier.Interrupts() {
		// No chat call for this message. Immediate shows a localized
		// safety acknowledgment; Urgent waits for the user to continue.
		return p.crisisOutcome(userMsg, result), nil
	}

	reply, err := p.callChat(ctx, sendSessionID, userMsg, messages)
	if err != nil {
		p.log.Warn().Err(err).Str("text", logging.Redact(text, p.dev)).Msg("chat call failed, serving fallback")
		go p.audit.LogEvent(context.Background(), "chat_fallback", map[string]any{"reason": "remote_unavailable"})
		return &SendOutcome{
			UserMessage: userMsg,
			Reply:       model.NewBotMessage(p.loc.T("network_fallback"), p.lang, model.EmotionNeutral),
		}, nil
	}

	botMsg := model.NewBotMessage(reply.Response, p.lang, reply.Emotion)
	if err := p.attachReply(ctx, sendSessionID, userMsg, botMsg); err != nil {
		return nil, err
	}
	go p.audit.LogEvent(context.Background(), "message_exchange", map[string]any{"emotion": emotion})

	return &SendOutcome{UserMessage: userMsg, Reply: botMsg, Persisted: true, Crisis: crisisFor(result)}, nil
}

func (p *pipelineUC) callChat(ctx context.Context, sessionID string, userMsg model.Message, history []model.Message) (adapter.ChatReply, error) {
	callCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.inflightCancel = cancel
	p.mu.Unlock()
	defer func() {
		cancel()
		p.mu.Lock()
		p.inflightCancel = nil
		p.mu.Unlock()
	}()

	recent := history
	if len(recent) > p.contextWindow {
		recent = recent[len(recent)-p.contextWindow:]
	}
	contextMsgs := make([]adapter.RemoteMessage, 0, len(recent))
	for _, m := range recent {
		contextMsgs = append(contextMsgs, adapter.RemoteMessage{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Language:  string(m.Language),
			Emotion:   m.Emotion,
		})
	}

	return p.remote.Chat(callCtx, adapter.ChatRequest{
		Message:   userMsg.Content,
		SessionID: sessionID,
		Language:  p.lang,
		Emotion:   userMsg.Emotion,
		Context:   contextMsgs,
		State:     model.DeriveConversationState(history),
		Anonymous: p.anonymous,
	})
}

// attachReply appends the bot reply, detecting sends whose session was
// rotated while the call was in flight: the exchange is reattached to
// the new session instead of being dropped or misattributed.
func (p *pipelineUC) attachReply(ctx context.Context, sendSessionID string, userMsg, botMsg model.Message) error {
	currentID, ok := p.sessions.CurrentID(ctx)
	if !ok || currentID != sendSessionID {
		if _, err := p.sessions.GetOrCreateID(ctx); err != nil {
			return err
		}
		fresh := append(p.sessions.Load(ctx), userMsg, botMsg)
		if err := p.sessions.Persist(ctx, fresh); err != nil {
			return err
		}
		metrics.IncStaleSendReattached()
		p.audit.LogEvent(ctx, "stale_send_reattached", map[string]any{
			"sent_session": sendSessionID,
		})
		return nil
	}
	messages := append(p.sessions.Load(ctx), botMsg)
	return p.sessions.Persist(ctx, messages)
}

func (p *pipelineUC) AbortInFlight() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflightCancel != nil {
		p.inflightCancel()
	}
}

// dispatch executes the classifier's side-effect intents in order. This
// is the single place crisis side effects happen.
func (p *pipelineUC) dispatch(ctx context.Context, result crisis.Result, text string) {
	for _, intent := range result.Intents {
		switch intent {
		case crisis.IntentAbortInFlight:
			p.AbortInFlight()
		case crisis.IntentClearTypingTimer:
			if p.hooks.ClearTyping != nil {
				p.hooks.ClearTyping()
			}
		case crisis.IntentLogCrisisEvent:
			event := model.NewCrisisEvent(result.Tier, p.lang, result.PatternID, text)
			if err := p.crisisLog.Append(ctx, event); err != nil {
				// The dangerous path must not fail silently.
				p.log.Error().Err(err).Str("tier", string(result.Tier)).Msg("crisis event logging failed")
			}
			metrics.IncCrisisDetection(string(result.Tier), string(p.lang))
			p.audit.LogEvent(ctx, "crisis_intervention", map[string]any{
				"tier":       string(result.Tier),
				"pattern_id": result.PatternID,
			})
			go p.forwardCrisisReport(event)
		case crisis.IntentShowEmergencyView:
			if p.hooks.ShowEmergencyView != nil {
				p.hooks.ShowEmergencyView(result.Tier, p.emergencyView(result.Tier))
			}
		case crisis.IntentLockInput:
			if p.hooks.LockInput != nil {
				p.hooks.LockInput()
			}
		}
	}
}

func (p *pipelineUC) forwardCrisisReport(event model.CrisisEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Fire-and-forget; the client records the failure metric.
	_ = p.remote.ReportCrisis(ctx, adapter.CrisisReport{
		Type:      string(event.Tier),
		Language:  event.Language,
		Timestamp: event.Timestamp,
		Details:   map[string]string{"pattern_id": event.PatternID},
	})
}

func (p *pipelineUC) emergencyView(tier model.Tier) EmergencyView {
	if tier == model.TierImmediate {
		return EmergencyView{
			Title: p.loc.T("crisis_immediate_title"),
			Body:  p.loc.T("crisis_immediate_body"),
			Ack:   p.loc.T("crisis_confirm_received"),
		}
	}
	return EmergencyView{
		Title:         p.loc.T("crisis_urgent_title"),
		Body:          p.loc.T("crisis_urgent_body"),
		ContinueLabel: p.loc.T("crisis_urgent_continue"),
	}
}

func (p *pipelineUC) crisisOutcome(userMsg model.Message, result crisis.Result) *SendOutcome {
	ack := p.loc.T("crisis_immediate_ack")
	if result.Tier == model.TierUrgent {
		ack = p.loc.T("crisis_urgent_body")
	}
	return &SendOutcome{
		UserMessage: userMsg,
		Reply:       model.NewBotMessage(ack, p.lang, model.EmotionNeutral),
		Crisis: &CrisisOutcome{
			Tier:        result.Tier,
			PatternID:   result.PatternID,
			View:        p.emergencyView(result.Tier),
			InputLocked: true,
		},
	}
}

// crisisFor maps a non-interrupting hit (Concerning) into the outcome;
// the chat flow proceeded normally around it.
func crisisFor(result crisis.Result) *CrisisOutcome {
	if !result.IsCrisis() {
		return nil
	}
	return &CrisisOutcome{Tier: result.Tier, PatternID: result.PatternID}
}
