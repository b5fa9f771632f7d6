package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/models"
	"github.com/ecoleplus/mobile-api/internal/service"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
	"github.com/ecoleplus/mobile-api/pkg/response"
)

type statementService interface {
	Request(ctx context.Context, studentID int64, format models.StatementFormat) (*dto.StatementJobPayload, error)
	Status(ctx context.Context, id string) (*dto.StatementJobPayload, error)
	ResolveDownload(ctx context.Context, token string) (*service.StatementDownload, error)
}

type statementRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Format    string `json:"format"`
}

// StatementHandler manages payment-statement exports and downloads.
type StatementHandler struct {
	service statementService
}

// NewStatementHandler constructs the handler.
func NewStatementHandler(service statementService) *StatementHandler {
	return &StatementHandler{service: service}
}

// Request godoc
// @Summary Queue a payment statement export
// @Tags Statements
// @Accept json
// @Produce json
// @Param payload body statementRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /student/statements [post]
func (h *StatementHandler) Request(c *gin.Context) {
	var req statementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id requis"))
		return
	}
	studentID, err := strconv.ParseInt(strings.TrimSpace(req.StudentID), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id invalide"))
		return
	}
	format := models.StatementFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	if format == "" {
		format = models.StatementFormatCSV
	}
	job, err := h.service.Request(c.Request.Context(), studentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Statement export job status
// @Tags Statements
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /student/statements/{id} [get]
func (h *StatementHandler) Status(c *gin.Context) {
	job, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a rendered statement
// @Tags Statements
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *StatementHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.StatementFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Cache-Control", "no-store")

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat statement file"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, download.File, nil)
}
