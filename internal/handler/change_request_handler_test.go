package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardnest/cardnest-api/internal/models"
	"github.com/cardnest/cardnest-api/internal/service"
)

type stubChangeRequestRepo struct {
	requests map[string]*models.ChangeRequest
	created  []models.ChangeRequest
}

func (s *stubChangeRequestRepo) Create(ctx context.Context, request *models.ChangeRequest) error {
	request.ID = "cr-1"
	request.SubmittedAt = time.Now().UTC()
	s.created = append(s.created, *request)
	return nil
}

func (s *stubChangeRequestRepo) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (s *stubChangeRequestRepo) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error) {
	return nil, nil
}

func (s *stubChangeRequestRepo) UpdateStatus(ctx context.Context, id string, status models.ChangeRequestStatus, reviewerID string, reviewedAt time.Time) error {
	request, ok := s.requests[id]
	if !ok || request.Status != models.ChangeRequestStatusPending {
		return sql.ErrNoRows
	}
	request.Status = status
	return nil
}

type stubChangeRequestStudents struct {
	student *models.Student
	updates map[string]string
}

func (s *stubChangeRequestStudents) FindByNaturalKey(ctx context.Context, institutionID, rollNo, section, class string) (*models.Student, error) {
	if s.student == nil || s.student.InstitutionID != institutionID || s.student.RollNo != rollNo {
		return nil, sql.ErrNoRows
	}
	return s.student, nil
}

func (s *stubChangeRequestStudents) UpdateField(ctx context.Context, studentID, column, value string) error {
	if s.updates == nil {
		s.updates = map[string]string{}
	}
	s.updates[column] = value
	return nil
}

func newChangeRequestRouter(claims *models.SessionClaims) (*gin.Engine, *stubChangeRequestRepo, *stubChangeRequestStudents) {
	gin.SetMode(gin.TestMode)

	repo := &stubChangeRequestRepo{requests: map[string]*models.ChangeRequest{}}
	students := &stubChangeRequestStudents{student: &models.Student{
		ID:            "stu-1",
		InstitutionID: "inst-1",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
	}}
	svc := service.NewChangeRequestService(repo, students, nil, nil)
	h := NewChangeRequestHandler(svc)

	r := gin.New()
	r.Use(injectClaims(claims))
	r.POST("/student/change-requests", h.Submit)
	r.GET("/student/change-requests", h.ListOwn)
	r.GET("/institute/change-requests", h.List)
	r.POST("/institute/change-requests/review", h.Review)
	return r, repo, students
}

func testStudentClaims() *models.SessionClaims {
	institutionID := "inst-1"
	return &models.SessionClaims{
		PrincipalID:   "stu-1",
		Role:          models.RoleStudent,
		LoginID:       "42",
		InstitutionID: &institutionID,
	}
}

func testAdminClaims() *models.SessionClaims {
	institutionID := "inst-1"
	return &models.SessionClaims{
		PrincipalID:   "admin-1",
		Role:          models.RoleInstituteAdmin,
		LoginID:       "admin@example.com",
		InstitutionID: &institutionID,
	}
}

func TestChangeRequestSubmitEndpoint(t *testing.T) {
	r, repo, _ := newChangeRequestRouter(testStudentClaims())

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{
		"institution_id": "inst-1",
		"roll_no": "42",
		"section": "A",
		"class": "10",
		"changes": [{"field_name": "mobile", "old_value": "111", "new_value": "222"}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/student/change-requests", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "mobile", repo.created[0].FieldName)
}

func TestChangeRequestSubmitEndpointMalformedBody(t *testing.T) {
	r, _, _ := newChangeRequestRouter(testStudentClaims())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/student/change-requests", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestChangeRequestReviewEndpointApprove(t *testing.T) {
	r, repo, students := newChangeRequestRouter(testAdminClaims())
	repo.requests["cr-1"] = &models.ChangeRequest{
		ID:            "cr-1",
		InstitutionID: "inst-1",
		StudentID:     "stu-1",
		FieldName:     "mobile",
		NewValue:      "222",
		Status:        models.ChangeRequestStatusPending,
	}

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"request_id": "cr-1", "decision": "approve"}`)
	req := httptest.NewRequest(http.MethodPost, "/institute/change-requests/review", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "222", students.updates["mobile"])
	assert.Contains(t, w.Body.String(), string(models.ChangeRequestStatusApproved))
}

func TestChangeRequestReviewEndpointAlreadyReviewed(t *testing.T) {
	r, repo, _ := newChangeRequestRouter(testAdminClaims())
	repo.requests["cr-1"] = &models.ChangeRequest{
		ID:            "cr-1",
		InstitutionID: "inst-1",
		StudentID:     "stu-1",
		FieldName:     "mobile",
		Status:        models.ChangeRequestStatusRejected,
	}

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"request_id": "cr-1", "decision": "approve"}`)
	req := httptest.NewRequest(http.MethodPost, "/institute/change-requests/review", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChangeRequestListEndpointForbiddenForStudents(t *testing.T) {
	r, _, _ := newChangeRequestRouter(testStudentClaims())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/institute/change-requests", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
