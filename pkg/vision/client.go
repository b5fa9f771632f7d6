package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/pkg/config"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

const extractionPrompt = `Extrais les informations de cette pièce d'identité et réponds uniquement avec un objet JSON contenant les champs: nin, nom, prenom, dateNaissance (format YYYY-MM-DD), lieuNaissance. Utilise null pour les champs illisibles.`

// Extraction holds the identity fields read from a document image.
// Field names follow the mobile client contract.
type Extraction struct {
	NIN        string `json:"nin"`
	LastName   string `json:"nom"`
	FirstName  string `json:"prenom"`
	BirthDate  string `json:"dateNaissance"`
	BirthPlace string `json:"lieuNaissance"`
}

// Doer abstracts the HTTP client for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AttemptObserver is notified after each upstream attempt. Outcome is one of
// "success", "rate_limited", "failed", "unparseable".
type AttemptObserver func(model, outcome string)

// Client calls a vision model endpoint to extract identity data, walking an
// ordered list of candidate models. Each candidate gets up to MaxAttempts
// tries; HTTP 429 retries the same candidate after a backoff, any other
// failure moves to the next candidate immediately.
type Client struct {
	endpoint    string
	apiKey      string
	models      []string
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration

	httpClient Doer
	logger     *zap.Logger
	observer   AttemptObserver
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithObserver registers an attempt observer (metrics).
func WithObserver(fn AttemptObserver) Option {
	return func(c *Client) { c.observer = fn }
}

// NewClient builds a vision client from configuration.
func NewClient(cfg config.OCRConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		models:      cfg.Models,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
		timeout:     cfg.RequestTimeout,
		logger:      logger,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 2
	}
	if c.backoff <= 0 {
		c.backoff = 2 * time.Second
	}
	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// ExtractIdentity runs the candidate fallback chain over the given image.
func (c *Client) ExtractIdentity(ctx context.Context, image []byte, mimeType string) (*Extraction, error) {
	if c.apiKey == "" {
		return nil, appErrors.Clone(appErrors.ErrOCRMissingCredential, "")
	}
	if len(c.models) == 0 {
		return nil, appErrors.Clone(appErrors.ErrOCRExhausted, "no extraction models configured")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, encoded)

	var lastErr error
	for _, model := range c.models {
		extraction, err := c.tryModel(ctx, model, dataURL)
		if err == nil {
			return extraction, nil
		}
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrOCRUnparseable.Code {
			// A model that answered but produced garbage is a contract
			// problem, not an availability problem. No point retrying.
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrOCRExhausted.Code, appErrors.ErrOCRExhausted.Status, "extraction cancelled")
		}
		lastErr = err
		c.logger.Warn("extraction model failed, trying next candidate",
			zap.String("model", model), zap.Error(err))
	}

	return nil, appErrors.Wrap(lastErr, appErrors.ErrOCRExhausted.Code, appErrors.ErrOCRExhausted.Status, appErrors.ErrOCRExhausted.Message)
}

// tryModel attempts a single candidate up to maxAttempts times. Only rate
// limiting earns a retry against the same candidate.
func (c *Client) tryModel(ctx context.Context, model, dataURL string) (*Extraction, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		extraction, retryable, err := c.attempt(ctx, model, dataURL)
		if err == nil {
			c.observe(model, "success")
			return extraction, nil
		}
		lastErr = err

		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrOCRUnparseable.Code {
			c.observe(model, "unparseable")
			return nil, err
		}
		if !retryable {
			c.observe(model, "failed")
			return nil, err
		}

		c.observe(model, "rate_limited")
		if attempt < c.maxAttempts {
			if err := sleepCtx(ctx, c.backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// attempt performs one HTTP round trip. The second return value reports
// whether the failure is worth retrying against the same model.
func (c *Client) attempt(ctx context.Context, model, dataURL string) (*Extraction, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: extractionPrompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		return nil, false, fmt.Errorf("encode extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("call extraction endpoint: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false, fmt.Errorf("read extraction response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		extraction, err := decodeExtraction(payload)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrOCRUnparseable.Code, appErrors.ErrOCRUnparseable.Status, appErrors.ErrOCRUnparseable.Message)
		}
		return extraction, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("model %s rate limited (status %d)", model, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("model %s returned status %d: %s", model, resp.StatusCode, truncate(string(payload), 200))
	}
}

func (c *Client) observe(model, outcome string) {
	if c.observer != nil {
		c.observer(model, outcome)
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func decodeExtraction(payload []byte) (*Extraction, error) {
	var resp chatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode completion envelope: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion has no choices")
	}

	content := stripFences(resp.Choices[0].Message.Content)
	var extraction Extraction
	if err := json.Unmarshal([]byte(content), &extraction); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %w", err)
	}
	return &extraction, nil
}

// stripFences removes markdown code fences that some models wrap around
// their JSON answers.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
