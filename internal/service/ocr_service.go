package service

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/internal/dto"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
	"github.com/ecoleplus/mobile-api/pkg/vision"
)

type identityExtractor interface {
	ExtractIdentity(ctx context.Context, image []byte, mimeType string) (*vision.Extraction, error)
}

// OCRService drives identity-document extraction for profile completion.
type OCRService struct {
	client identityExtractor
	logger *zap.Logger
}

// NewOCRService constructs the OCR service.
func NewOCRService(client identityExtractor, logger *zap.Logger) *OCRService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCRService{client: client, logger: logger}
}

// ExtractFromBytes runs extraction over raw uploaded image bytes.
func (s *OCRService) ExtractFromBytes(ctx context.Context, image []byte, mimeType string) (*dto.IdentityExtraction, error) {
	if len(image) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image requise")
	}
	extraction, err := s.client.ExtractIdentity(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	return &dto.IdentityExtraction{
		NIN:        extraction.NIN,
		LastName:   extraction.LastName,
		FirstName:  extraction.FirstName,
		BirthDate:  extraction.BirthDate,
		BirthPlace: extraction.BirthPlace,
	}, nil
}

// ExtractFromBase64 accepts a base64 image, with or without a data: URL
// prefix, and runs extraction.
func (s *OCRService) ExtractFromBase64(ctx context.Context, encoded string) (*dto.IdentityExtraction, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image requise")
	}

	mimeType := ""
	if strings.HasPrefix(encoded, "data:") {
		parts := strings.SplitN(encoded, ",", 2)
		if len(parts) != 2 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "image base64 invalide")
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		mimeType = strings.TrimSuffix(strings.SplitN(meta, ";", 2)[0], ";")
		encoded = parts[1]
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "image base64 invalide")
	}

	return s.ExtractFromBytes(ctx, image, mimeType)
}
