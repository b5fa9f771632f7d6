package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/service"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
	"github.com/ecoleplus/mobile-api/pkg/response"
)

type studentService interface {
	Login(ctx context.Context, req service.LoginRequest) (*dto.StudentPayload, error)
	Profile(ctx context.Context, studentID int64) (*dto.StudentPayload, error)
	UpdateProfile(ctx context.Context, req service.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error)
}

// StudentHandler exposes login and profile endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Login godoc
// @Summary Resolve a student by ID, email or phone
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Identifier"
// @Success 200 {object} response.Envelope
// @Router /student/login [post]
func (h *StudentHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "corps JSON invalide"))
		return
	}
	payload, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Profile godoc
// @Summary Student profile
// @Tags Student
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	studentID, err := studentIDFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.service.Profile(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// UpdateProfile godoc
// @Summary Overwrite whitelisted profile fields
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.ProfileUpdateRequest true "Fields to overwrite"
// @Success 200 {object} response.Envelope
// @Router /student/profile/update [post]
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "corps JSON invalide"))
		return
	}
	result, err := h.service.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
