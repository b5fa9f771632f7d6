package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

// studentIDFromQuery reads the legacy student_id query parameter.
func studentIDFromQuery(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Query("student_id"))
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "student_id requis")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "student_id invalide")
	}
	return id, nil
}
