package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/pkg/response"
)

type formationService interface {
	List(ctx context.Context, studentID int64) ([]dto.FormationPayload, error)
}

// FormationHandler lists a student's enrolled formations.
type FormationHandler struct {
	service formationService
}

// NewFormationHandler constructs the handler.
func NewFormationHandler(service formationService) *FormationHandler {
	return &FormationHandler{service: service}
}

// List godoc
// @Summary Enrolled formations with balance and progress
// @Tags Formations
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student/formations [get]
func (h *FormationHandler) List(c *gin.Context) {
	studentID, err := studentIDFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := h.service.List(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"formations": list, "total": len(list)}, nil)
}
