package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mentivio-widget/internal/config"
	"mentivio-widget/internal/domain"
	"mentivio-widget/internal/domain/ports/adapter"
	"mentivio-widget/internal/infra/metrics"
)

// Compile-time assurance this client satisfies the port
var _ adapter.RemoteBackend = (*Client)(nil)

// Client talks to the wellness product's backend. Every failure mode —
// timeout, abort, non-2xx, undecodable body — collapses into
// domain.ErrRemoteUnavailable so callers degrade instead of branching.
type Client struct {
	base              string
	http              *http.Client
	chatTimeout       time.Duration
	statusTimeout     time.Duration
	complianceTimeout time.Duration
	log               *zerolog.Logger
}

func NewClient(cfg *config.BackendConfig, logger *zerolog.Logger) *Client {
	cliLog := logger.With().Str("component", "BackendClient").Logger()
	return &Client{
		base:              strings.TrimRight(cfg.BaseURL, "/"),
		http:              &http.Client{},
		chatTimeout:       cfg.ChatTimeout,
		statusTimeout:     cfg.StatusTimeout,
		complianceTimeout: cfg.ComplianceTimeout,
		log:               &cliLog,
	}
}

func (c *Client) SessionStatus(ctx context.Context, sessionID string) (adapter.SessionStatus, error) {
	var status adapter.SessionStatus
	err := c.getJSON(ctx, "session-status", c.statusTimeout,
		c.base+"/session-status?session_id="+url.QueryEscape(sessionID), &status)
	if err != nil {
		return adapter.SessionStatus{}, err
	}
	return status, nil
}

func (c *Client) SessionExport(ctx context.Context, sessionID string) ([]adapter.RemoteMessage, error) {
	var body struct {
		ConversationHistory []adapter.RemoteMessage `json:"conversation_history"`
	}
	err := c.getJSON(ctx, "session-export", c.statusTimeout,
		c.base+"/session-export?session_id="+url.QueryEscape(sessionID), &body)
	if err != nil {
		return nil, err
	}
	return body.ConversationHistory, nil
}

func (c *Client) SessionClear(ctx context.Context, sessionID string) error {
	payload := map[string]string{"session_id": sessionID}
	return c.postJSON(ctx, "session-clear", c.statusTimeout, c.base+"/session-clear", payload, nil)
}

func (c *Client) Chat(ctx context.Context, req adapter.ChatRequest) (adapter.ChatReply, error) {
	var reply adapter.ChatReply
	if err := c.postJSON(ctx, "chat", c.chatTimeout, c.base+"/chat", req, &reply); err != nil {
		return adapter.ChatReply{}, err
	}
	return reply, nil
}

// ComplianceStatus is bypassed with known-good defaults against a local
// or development origin, where the compliance service does not run.
func (c *Client) ComplianceStatus(ctx context.Context) (adapter.ComplianceStatus, error) {
	if isLocalOrigin(c.base) {
		return adapter.ComplianceStatus{
			HIPAACompliant: true,
			GDPRCompliant:  true,
			AuditLogging:   true,
		}, nil
	}
	var status adapter.ComplianceStatus
	if err := c.getJSON(ctx, "compliance-status", c.complianceTimeout, c.base+"/compliance-status", &status); err != nil {
		return adapter.ComplianceStatus{}, err
	}
	return status, nil
}

func (c *Client) ReportCrisis(ctx context.Context, report adapter.CrisisReport) error {
	err := c.postJSON(ctx, "crisis-report", c.statusTimeout, c.base+"/compliance/crisis-report", report, nil)
	if err != nil {
		metrics.IncCrisisReportFailure()
		c.log.Warn().Err(err).Msg("crisis report delivery failed")
		return err
	}
	metrics.IncCrisisReportForwarded()
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, timeout time.Duration, rawURL string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	return c.do(req, endpoint, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, timeout time.Duration, rawURL string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveRemoteCall(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncRemoteCallError(endpoint)
		return fmt.Errorf("%s: %v: %w", endpoint, err, domain.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncRemoteCallError(endpoint)
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: status %d: %w", endpoint, resp.StatusCode, domain.ErrRemoteUnavailable)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.IncRemoteCallError(endpoint)
		return fmt.Errorf("%s: decode response: %v: %w", endpoint, err, domain.ErrRemoteUnavailable)
	}
	return nil
}

func isLocalOrigin(base string) bool {
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1" ||
		strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".test")
}
