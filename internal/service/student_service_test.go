package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleplus/mobile-api/internal/models"
	"github.com/ecoleplus/mobile-api/pkg/config"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

type stubStudentRepo struct {
	byID    map[int64]*models.StudentContext
	byEmail map[string]*models.StudentContext
	byPhone map[string]*models.StudentContext

	updates     []models.StudentUpdate
	updatedCols []string
}

func (s *stubStudentRepo) FindByID(_ context.Context, id int64) (*models.StudentContext, error) {
	if sc, ok := s.byID[id]; ok {
		return sc, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentRepo) FindByEmail(_ context.Context, email string) (*models.StudentContext, error) {
	if sc, ok := s.byEmail[email]; ok {
		return sc, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentRepo) FindByPhone(_ context.Context, phone string) (*models.StudentContext, error) {
	if sc, ok := s.byPhone[phone]; ok {
		return sc, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentRepo) UpdateProfile(_ context.Context, _ int64, update models.StudentUpdate) ([]string, error) {
	s.updates = append(s.updates, update)
	return s.updatedCols, nil
}

type stubAudit struct {
	logs []models.AuditLog
}

func (s *stubAudit) Create(_ context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

func sampleStudent(id int64) *models.StudentContext {
	formation := "Développement Web"
	return &models.StudentContext{
		Student: models.Student{
			ID:        id,
			LastName:  "DIALLO",
			FirstName: "Aminata",
			Email:     "aminata@example.com",
			Telephone: "771234567",
			Photo:     "photos/42.jpg",
		},
		FormationName:   &formation,
		EnrollmentCount: 2,
	}
}

func TestLoginResolvesByIDFirst(t *testing.T) {
	repo := &stubStudentRepo{byID: map[int64]*models.StudentContext{42: sampleStudent(42)}}
	audit := &stubAudit{}
	svc := NewStudentService(repo, audit, nil, config.MediaConfig{BaseURL: "https://cdn.ecoleplus.sn/media"}, nil, nil)

	payload, err := svc.Login(context.Background(), LoginRequest{StudentID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", payload.ID)
	assert.Equal(t, "DIALLO", payload.LastName)
	assert.Equal(t, "Développement Web", payload.FormationName)
	assert.Equal(t, "https://cdn.ecoleplus.sn/media/photos/42.jpg", payload.Photo)
	assert.Equal(t, "actif", payload.Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)
}

func TestLoginFallsBackToEmailThenPhone(t *testing.T) {
	repo := &stubStudentRepo{
		byPhone: map[string]*models.StudentContext{"771234567": sampleStudent(7)},
	}
	svc := NewStudentService(repo, nil, nil, config.MediaConfig{}, nil, nil)

	payload, err := svc.Login(context.Background(), LoginRequest{StudentID: "771234567"})
	require.NoError(t, err)
	assert.Equal(t, "7", payload.ID)
}

func TestLoginByEmailField(t *testing.T) {
	repo := &stubStudentRepo{
		byEmail: map[string]*models.StudentContext{"aminata@example.com": sampleStudent(9)},
	}
	svc := NewStudentService(repo, nil, nil, config.MediaConfig{}, nil, nil)

	payload, err := svc.Login(context.Background(), LoginRequest{Email: "aminata@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "9", payload.ID)
}

func TestLoginRequiresIdentifier(t *testing.T) {
	svc := NewStudentService(&stubStudentRepo{}, nil, nil, config.MediaConfig{}, nil, nil)

	_, err := svc.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownStudent(t *testing.T) {
	svc := NewStudentService(&stubStudentRepo{}, nil, nil, config.MediaConfig{}, nil, nil)

	_, err := svc.Login(context.Background(), LoginRequest{StudentID: "999"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfilePhotoAlreadyAbsolute(t *testing.T) {
	student := sampleStudent(42)
	student.Photo = "https://elsewhere.example/photo.jpg"
	repo := &stubStudentRepo{byID: map[int64]*models.StudentContext{42: student}}
	svc := NewStudentService(repo, nil, nil, config.MediaConfig{BaseURL: "https://cdn.ecoleplus.sn/media"}, nil, nil)

	payload, err := svc.Profile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "https://elsewhere.example/photo.jpg", payload.Photo)
}

func TestUpdateProfileWhitelistedFields(t *testing.T) {
	repo := &stubStudentRepo{
		byID:        map[int64]*models.StudentContext{42: sampleStudent(42)},
		updatedCols: []string{"email", "nin"},
	}
	audit := &stubAudit{}
	svc := NewStudentService(repo, audit, nil, config.MediaConfig{}, nil, nil)

	email := "new@example.com"
	nin := "1234567890"
	resp, err := svc.UpdateProfile(context.Background(), ProfileUpdateRequest{
		StudentID: "42",
		Email:     &email,
		NIN:       &nin,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "nin"}, resp.UpdatedFields)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionProfileUpdate, audit.logs[0].Action)
}

func TestUpdateProfileDiscardsBadBirthDateSilently(t *testing.T) {
	repo := &stubStudentRepo{
		byID:        map[int64]*models.StudentContext{42: sampleStudent(42)},
		updatedCols: []string{"adresse"},
	}
	svc := NewStudentService(repo, nil, nil, config.MediaConfig{}, nil, nil)

	address := "Rue 12"
	badDate := "31/12/2001"
	resp, err := svc.UpdateProfile(context.Background(), ProfileUpdateRequest{
		StudentID: "42",
		Address:   &address,
		BirthDate: &badDate,
	})

	// The request still succeeds; the bad date is simply dropped.
	require.NoError(t, err)
	assert.Equal(t, []string{"adresse"}, resp.UpdatedFields)
	require.Len(t, repo.updates, 1)
	assert.Nil(t, repo.updates[0].BirthDate)
	assert.NotNil(t, repo.updates[0].Address)
}

func TestUpdateProfileParsesValidBirthDate(t *testing.T) {
	repo := &stubStudentRepo{
		byID:        map[int64]*models.StudentContext{42: sampleStudent(42)},
		updatedCols: []string{"date_naissance"},
	}
	svc := NewStudentService(repo, nil, nil, config.MediaConfig{}, nil, nil)

	date := "2001-04-12"
	_, err := svc.UpdateProfile(context.Background(), ProfileUpdateRequest{
		StudentID: "42",
		BirthDate: &date,
	})
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	require.NotNil(t, repo.updates[0].BirthDate)
	assert.Equal(t, time.Date(2001, 4, 12, 0, 0, 0, 0, time.UTC), repo.updates[0].BirthDate.UTC())
}

func TestUpdateProfileUnknownStudent(t *testing.T) {
	svc := NewStudentService(&stubStudentRepo{}, nil, nil, config.MediaConfig{}, nil, nil)

	_, err := svc.UpdateProfile(context.Background(), ProfileUpdateRequest{StudentID: "999"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
