package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/dto"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
	"github.com/ecoleplus/mobile-api/pkg/response"
)

// maxOCRImageBytes bounds identity-card uploads. Scans from the mobile
// client stay well under this.
const maxOCRImageBytes = 10 << 20

type ocrService interface {
	ExtractFromBytes(ctx context.Context, image []byte, mimeType string) (*dto.IdentityExtraction, error)
	ExtractFromBase64(ctx context.Context, encoded string) (*dto.IdentityExtraction, error)
}

type ocrBase64Request struct {
	Image string `json:"image"`
}

// OCRHandler accepts identity-document images and returns extracted fields.
type OCRHandler struct {
	service ocrService
}

// NewOCRHandler constructs the handler.
func NewOCRHandler(service ocrService) *OCRHandler {
	return &OCRHandler{service: service}
}

// Extract godoc
// @Summary Extract identity fields from a document image
// @Description Accepts either a multipart "image" file or a JSON body with a base64 "image" field (data: prefix allowed).
// @Tags OCR
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ocr/extract-nin [post]
func (h *OCRHandler) Extract(c *gin.Context) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.extractMultipart(c)
		return
	}

	var req ocrBase64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image requise"))
		return
	}
	result, err := h.service.ExtractFromBase64(c.Request.Context(), req.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *OCRHandler) extractMultipart(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fichier image requis"))
		return
	}
	if fileHeader.Size > maxOCRImageBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image trop volumineuse"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxOCRImageBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	result, err := h.service.ExtractFromBytes(c.Request.Context(), image, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
