package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
	"github.com/ecoleplus/mobile-api/pkg/vision"
)

type stubExtractor struct {
	extraction *vision.Extraction
	err        error

	gotImage []byte
	gotMime  string
}

func (s *stubExtractor) ExtractIdentity(_ context.Context, image []byte, mimeType string) (*vision.Extraction, error) {
	s.gotImage = image
	s.gotMime = mimeType
	if s.err != nil {
		return nil, s.err
	}
	return s.extraction, nil
}

func TestExtractFromBytes(t *testing.T) {
	extractor := &stubExtractor{extraction: &vision.Extraction{
		NIN:        "1234567890",
		LastName:   "DIALLO",
		FirstName:  "Aminata",
		BirthDate:  "2001-04-12",
		BirthPlace: "Dakar",
	}}
	svc := NewOCRService(extractor, nil)

	result, err := svc.ExtractFromBytes(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", result.NIN)
	assert.Equal(t, "DIALLO", result.LastName)
	assert.Equal(t, "image/png", extractor.gotMime)
}

func TestExtractFromBytesEmptyImage(t *testing.T) {
	svc := NewOCRService(&stubExtractor{}, nil)

	_, err := svc.ExtractFromBytes(context.Background(), nil, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExtractFromBase64StripsDataPrefix(t *testing.T) {
	extractor := &stubExtractor{extraction: &vision.Extraction{NIN: "1"}}
	svc := NewOCRService(extractor, nil)

	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("raw-bytes"))
	_, err := svc.ExtractFromBase64(context.Background(), encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-bytes"), extractor.gotImage)
	assert.Equal(t, "image/jpeg", extractor.gotMime)
}

func TestExtractFromBase64PlainPayload(t *testing.T) {
	extractor := &stubExtractor{extraction: &vision.Extraction{}}
	svc := NewOCRService(extractor, nil)

	_, err := svc.ExtractFromBase64(context.Background(), base64.StdEncoding.EncodeToString([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), extractor.gotImage)
	assert.Equal(t, "", extractor.gotMime)
}

func TestExtractFromBase64Invalid(t *testing.T) {
	svc := NewOCRService(&stubExtractor{}, nil)

	_, err := svc.ExtractFromBase64(context.Background(), "not-base64!!")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExtractPropagatesGatewayErrors(t *testing.T) {
	extractor := &stubExtractor{err: appErrors.Clone(appErrors.ErrOCRExhausted, "")}
	svc := NewOCRService(extractor, nil)

	_, err := svc.ExtractFromBytes(context.Background(), []byte("img"), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOCRExhausted.Code, appErrors.FromError(err).Code)
}
