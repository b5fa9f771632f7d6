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

type fakePaymentSrv struct {
	history *dto.PaymentHistoryResponse
	err     error
}

func (f *fakePaymentSrv) History(context.Context, int64) (*dto.PaymentHistoryResponse, error) {
	return f.history, f.err
}

func TestPaymentHandlerHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePaymentSrv{history: &dto.PaymentHistoryResponse{
		Total: 1,
		Summary: dto.PaymentSummary{
			TotalDue:        100000,
			TotalPaid:       70000,
			Remaining:       30000,
			PaymentProgress: 70,
		},
	}}
	handler := NewPaymentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/payments?student_id=42", nil)

	handler.History(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	summary, ok := envelope.Data["summary"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, float64(30000), summary["remaining"])
		assert.Equal(t, float64(70), summary["payment_progress"])
	}
}

func TestPaymentHandlerRequiresStudentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentHandler(&fakePaymentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/payments", nil)

	handler.History(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
