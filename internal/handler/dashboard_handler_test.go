package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ecoleplus/mobile-api/internal/dto"
)

type fakeDashboardSrv struct {
	resp     *dto.DashboardResponse
	cacheHit bool
	err      error
	lastID   int64
}

func (f *fakeDashboardSrv) Get(_ context.Context, studentID int64) (*dto.DashboardResponse, bool, error) {
	f.lastID = studentID
	return f.resp, f.cacheHit, f.err
}

func TestDashboardHandlerRequiresStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerSuccessWithCacheMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{
		resp:     &dto.DashboardResponse{Stats: dto.DashboardStats{TotalFormations: 2}},
		cacheHit: true,
	}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/dashboard?student_id=42", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), srv.lastID)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
	stats, ok := envelope.Data["stats"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, float64(2), stats["total_formations"])
	}
}

func TestDashboardHandlerBadStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/dashboard?student_id=abc", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
