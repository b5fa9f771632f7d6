package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/pkg/response"
)

type paymentService interface {
	History(ctx context.Context, studentID int64) (*dto.PaymentHistoryResponse, error)
}

// PaymentHandler serves the payment history and balance summary.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(service paymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// History godoc
// @Summary Payment history with balance summary
// @Tags Payments
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student/payments [get]
func (h *PaymentHandler) History(c *gin.Context) {
	studentID, err := studentIDFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.service.History(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}
