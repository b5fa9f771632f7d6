package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/service"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

type fakeStudentSrv struct {
	payload   *dto.StudentPayload
	updateRes *dto.ProfileUpdateResponse
	err       error

	lastLogin  service.LoginRequest
	lastUpdate service.ProfileUpdateRequest
}

func (f *fakeStudentSrv) Login(_ context.Context, req service.LoginRequest) (*dto.StudentPayload, error) {
	f.lastLogin = req
	return f.payload, f.err
}

func (f *fakeStudentSrv) Profile(context.Context, int64) (*dto.StudentPayload, error) {
	return f.payload, f.err
}

func (f *fakeStudentSrv) UpdateProfile(_ context.Context, req service.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error) {
	f.lastUpdate = req
	return f.updateRes, f.err
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func TestStudentHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStudentSrv{payload: &dto.StudentPayload{ID: "42", LastName: "DIALLO"}}
	handler := NewStudentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/login", strings.NewReader(`{"student_id":"42"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", srv.lastLogin.StudentID)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "DIALLO", envelope.Data["nom"])
}

func TestStudentHandlerLoginBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/login", strings.NewReader(`{`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerLoginNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Étudiant non trouvé")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/login", strings.NewReader(`{"student_id":"999"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "NOT_FOUND", envelope.Error["code"])
}

func TestStudentHandlerProfileRequiresID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/profile", nil)

	handler.Profile(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerProfileSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{payload: &dto.StudentPayload{ID: "42", NIN: "123"}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/profile?student_id=42", nil)

	handler.Profile(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "123", envelope.Data["nin"])
}

func TestStudentHandlerUpdateProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeStudentSrv{updateRes: &dto.ProfileUpdateResponse{
		Message:       "Profil mis à jour avec succès",
		UpdatedFields: []string{"email"},
	}}
	handler := NewStudentHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/profile/update",
		strings.NewReader(`{"student_id":"42","email":"new@example.com"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.UpdateProfile(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", srv.lastUpdate.StudentID)
	assert.NotNil(t, srv.lastUpdate.Email)
}
