package lanterns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/domain"
)

// APIKeyHeader carries the shared secret expected by the lantern service.
const APIKeyHeader = "X-API-Key"

// Client talks to the remote lantern service.
// It implements ports.LanternGateway and ports.LanternReader.
type Client struct {
	baseURL    string
	apiKey     string // SENSITIVE: never logged
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateLantern posts a new lantern. The service is not idempotent: each
// successful call creates one record.
func (c *Client) CreateLantern(ctx context.Context, req domain.LanternRequest) (domain.LanternRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.LanternRecord{}, fmt.Errorf("failed to marshal lantern: %w", err)
	}

	var rec domain.LanternRecord
	if err := c.do(ctx, http.MethodPost, "/lanterns/", body, &rec); err != nil {
		return domain.LanternRecord{}, err
	}

	c.logger.Debug("lantern created", "lantern_id", rec.ID)
	return rec, nil
}

// GetLantern fetches a lantern by ID.
func (c *Client) GetLantern(ctx context.Context, id string) (domain.LanternRecord, error) {
	var rec domain.LanternRecord
	if err := c.do(ctx, http.MethodGet, "/lanterns/"+url.PathEscape(id), nil, &rec); err != nil {
		return domain.LanternRecord{}, err
	}
	return rec, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out *domain.LanternRecord) error {
	if c.apiKey == "" {
		return &domain.GatewayError{Kind: domain.GatewayUnauthorized, Detail: "API key is not configured"}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("lantern service unreachable", "method", method, "path", path, "err", err)
		return &domain.GatewayError{Kind: domain.GatewayUnreachable, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("lantern service call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(method, resp)
	}

	var wire wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		kind := domain.GatewayUnreachable
		if method == http.MethodPost {
			// The lantern was created, only the reply is lost.
			kind = domain.GatewayUnconfirmed
		}
		c.logger.Warn("unreadable lantern service response", "method", method, "path", path, "status", resp.StatusCode, "err", err)
		return &domain.GatewayError{Kind: kind, Status: resp.StatusCode, Detail: "response unreadable", Err: err}
	}
	*out = wire.record()
	return nil
}

func parseError(method string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	gwErr := &domain.GatewayError{Status: resp.StatusCode, Detail: extractDetail(data)}

	switch {
	case resp.StatusCode >= 500:
		gwErr.Kind = domain.GatewayUnreachable
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		gwErr.Kind = domain.GatewayUnauthorized
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		gwErr.Kind = domain.GatewayNotFound
	default:
		gwErr.Kind = domain.GatewayRejected
	}
	return gwErr
}

// extractDetail reads the "detail" field, which is either a message or a list
// of validation problems.
func extractDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(data))
	}

	var msg string
	if err := json.Unmarshal(body.Detail, &msg); err == nil {
		return msg
	}

	var problems []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &problems); err == nil {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			if len(p.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", p.Loc[len(p.Loc)-1], p.Msg))
				continue
			}
			msgs = append(msgs, p.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(body.Detail)
}

// wireRecord tolerates numeric IDs.
type wireRecord struct {
	ID json.RawMessage `json:"id"`
	domain.LanternRequest
}

func (w wireRecord) record() domain.LanternRecord {
	id := strings.TrimSpace(string(w.ID))
	if id == "null" {
		id = ""
	}
	var s string
	if err := json.Unmarshal(w.ID, &s); err == nil {
		id = s
	}
	return domain.LanternRecord{ID: id, LanternRequest: w.LanternRequest}
}
