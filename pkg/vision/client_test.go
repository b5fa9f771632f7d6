package vision

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleplus/mobile-api/pkg/config"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

type scriptedDoer struct {
	responses []scriptedResponse
	requests  []*http.Request
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	if len(d.responses) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	next := d.responses[0]
	d.responses = d.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &http.Response{
		StatusCode: next.status,
		Body:       io.NopCloser(strings.NewReader(next.body)),
		Header:     make(http.Header),
	}, nil
}

func completion(content string) string {
	return `{"choices":[{"message":{"content":` + jsonString(content) + `}}]}`
}

func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func testConfig(models ...string) config.OCRConfig {
	return config.OCRConfig{
		Endpoint:       "https://example.test/v1/chat/completions",
		APIKey:         "test-key",
		Models:         models,
		MaxAttempts:    2,
		RetryBackoff:   time.Millisecond,
		RequestTimeout: time.Second,
	}
}

const validExtraction = `{"nin":"1234567890","nom":"DIALLO","prenom":"Aminata","dateNaissance":"2001-04-12","lieuNaissance":"Dakar"}`

func TestExtractIdentitySuccess(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: completion(validExtraction)},
	}}
	client := NewClient(testConfig("model-a"), nil, WithHTTPClient(doer))

	extraction, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/png")

	require.NoError(t, err)
	assert.Equal(t, "1234567890", extraction.NIN)
	assert.Equal(t, "DIALLO", extraction.LastName)
	assert.Equal(t, "Aminata", extraction.FirstName)
	assert.Equal(t, "2001-04-12", extraction.BirthDate)
	assert.Equal(t, "Dakar", extraction.BirthPlace)

	require.Len(t, doer.requests, 1)
	assert.Equal(t, "Bearer test-key", doer.requests[0].Header.Get("Authorization"))
}

func TestExtractIdentityStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validExtraction + "\n```"
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: completion(fenced)},
	}}
	client := NewClient(testConfig("model-a"), nil, WithHTTPClient(doer))

	extraction, err := client.ExtractIdentity(context.Background(), []byte("img"), "")

	require.NoError(t, err)
	assert.Equal(t, "DIALLO", extraction.LastName)
}

func TestExtractIdentityRetriesSameModelOnRateLimit(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusTooManyRequests, body: `{"error":"rate limited"}`},
		{status: http.StatusOK, body: completion(validExtraction)},
	}}

	var outcomes []string
	client := NewClient(testConfig("model-a", "model-b"), nil,
		WithHTTPClient(doer),
		WithObserver(func(model, outcome string) {
			outcomes = append(outcomes, model+":"+outcome)
		}),
	)

	extraction, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "1234567890", extraction.NIN)
	// Both attempts hit the first candidate; the second model was never needed.
	require.Len(t, doer.requests, 2)
	assert.Equal(t, []string{"model-a:rate_limited", "model-a:success"}, outcomes)
}

func TestExtractIdentityFallsBackToNextModelOnServerError(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{status: http.StatusOK, body: completion(validExtraction)},
	}}
	client := NewClient(testConfig("model-a", "model-b"), nil, WithHTTPClient(doer))

	extraction, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "Aminata", extraction.FirstName)
	require.Len(t, doer.requests, 2)
}

func TestExtractIdentityExhaustionCarriesLastError(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusInternalServerError, body: `{"error":"a down"}`},
		{status: http.StatusBadGateway, body: `{"error":"b down"}`},
	}}
	client := NewClient(testConfig("model-a", "model-b"), nil, WithHTTPClient(doer))

	_, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/jpeg")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOCRExhausted.Code, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Contains(t, err.Error(), "model-b")
}

func TestExtractIdentityUnparseableOutputIsTerminal(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: completion("désolé, je ne peux pas lire ce document")},
	}}
	client := NewClient(testConfig("model-a", "model-b"), nil, WithHTTPClient(doer))

	_, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/jpeg")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOCRUnparseable.Code, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	// The second candidate must not be consulted after a parse failure.
	require.Len(t, doer.requests, 1)
}

func TestExtractIdentityMissingCredential(t *testing.T) {
	cfg := testConfig("model-a")
	cfg.APIKey = ""
	doer := &scriptedDoer{}
	client := NewClient(cfg, nil, WithHTTPClient(doer))

	_, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/jpeg")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOCRMissingCredential.Code, appErr.Code)
	assert.Empty(t, doer.requests)
}

func TestExtractIdentityRateLimitExhaustsAttemptsThenFallsBack(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusTooManyRequests, body: ``},
		{status: http.StatusTooManyRequests, body: ``},
		{status: http.StatusOK, body: completion(validExtraction)},
	}}
	client := NewClient(testConfig("model-a", "model-b"), nil, WithHTTPClient(doer))

	extraction, err := client.ExtractIdentity(context.Background(), []byte("img"), "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "DIALLO", extraction.LastName)
	// Two attempts against model-a, then model-b succeeds.
	require.Len(t, doer.requests, 3)
}

func TestExtractIdentityContextCancelledDuringBackoff(t *testing.T) {
	cfg := testConfig("model-a")
	cfg.RetryBackoff = time.Minute
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusTooManyRequests, body: ``},
	}}
	client := NewClient(cfg, nil, WithHTTPClient(doer))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ExtractIdentity(ctx, []byte("img"), "image/jpeg")

	require.Error(t, err)
	require.Len(t, doer.requests, 1)
}
