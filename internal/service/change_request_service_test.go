package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

type mockChangeRequestRepo struct {
	requests   map[string]*models.ChangeRequest
	created    []models.ChangeRequest
	lastFilter models.ChangeRequestFilter
}

func (m *mockChangeRequestRepo) Create(ctx context.Context, request *models.ChangeRequest) error {
	request.ID = "cr-" + request.FieldName
	request.SubmittedAt = time.Now().UTC()
	m.created = append(m.created, *request)
	return nil
}

func (m *mockChangeRequestRepo) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (m *mockChangeRequestRepo) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error) {
	m.lastFilter = filter
	return nil, nil
}

func (m *mockChangeRequestRepo) UpdateStatus(ctx context.Context, id string, status models.ChangeRequestStatus, reviewerID string, reviewedAt time.Time) error {
	request, ok := m.requests[id]
	if !ok || request.Status != models.ChangeRequestStatusPending {
		return sql.ErrNoRows
	}
	request.Status = status
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &reviewedAt
	return nil
}

type mockChangeRequestStudents struct {
	students     map[string]*models.Student
	fieldUpdates map[string]string
	updateErr    error
}

func (m *mockChangeRequestStudents) FindByNaturalKey(ctx context.Context, institutionID, rollNo, section, class string) (*models.Student, error) {
	for _, student := range m.students {
		if student.InstitutionID == institutionID && student.RollNo == rollNo && student.Section == section && student.Class == class {
			return student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockChangeRequestStudents) UpdateField(ctx context.Context, studentID, column, value string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.students[studentID]; !ok {
		return sql.ErrNoRows
	}
	if m.fieldUpdates == nil {
		m.fieldUpdates = map[string]string{}
	}
	m.fieldUpdates[column] = value
	return nil
}

func studentClaims(institutionID string) *models.SessionClaims {
	return &models.SessionClaims{
		PrincipalID:   "stu-1",
		Role:          models.RoleStudent,
		LoginID:       "42",
		InstitutionID: &institutionID,
	}
}

func adminClaims(institutionID string) *models.SessionClaims {
	return &models.SessionClaims{
		PrincipalID:   "admin-1",
		Role:          models.RoleInstituteAdmin,
		LoginID:       "admin@example.com",
		InstitutionID: &institutionID,
	}
}

func newChangeRequestFixture() (*ChangeRequestService, *mockChangeRequestRepo, *mockChangeRequestStudents) {
	repo := &mockChangeRequestRepo{requests: map[string]*models.ChangeRequest{}}
	students := &mockChangeRequestStudents{students: map[string]*models.Student{
		"stu-1": {
			ID:            "stu-1",
			InstitutionID: "inst-1",
			RollNo:        "42",
			Section:       "A",
			Class:         "10",
			FullName:      "Asha Rao",
		},
	}}
	return NewChangeRequestService(repo, students, nil, nil), repo, students
}

func TestChangeRequestSubmit(t *testing.T) {
	svc, repo, _ := newChangeRequestFixture()

	requests, err := svc.Submit(context.Background(), dto.SubmitChangeRequest{
		InstitutionID: "inst-1",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
		Changes: []dto.FieldChange{
			{FieldName: "mobile", OldValue: "111", NewValue: "222"},
			{FieldName: "", NewValue: "dropped"},
			{FieldName: "email", NewValue: "new@example.com"},
		},
	}, studentClaims("inst-1"))
	require.NoError(t, err)

	// One row per non-empty change; the blank field name is dropped.
	require.Len(t, requests, 2)
	require.Len(t, repo.created, 2)
	assert.Equal(t, "mobile", repo.created[0].FieldName)
	assert.Equal(t, "email", repo.created[1].FieldName)
	for _, request := range repo.created {
		assert.Equal(t, models.ChangeRequestStatusPending, request.Status)
		assert.Equal(t, "stu-1", request.StudentID)
	}
}

func TestChangeRequestSubmitRejectsUneditableField(t *testing.T) {
	svc, repo, _ := newChangeRequestFixture()

	_, err := svc.Submit(context.Background(), dto.SubmitChangeRequest{
		InstitutionID: "inst-1",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
		Changes:       []dto.FieldChange{{FieldName: "roll_no", NewValue: "99"}},
	}, studentClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestChangeRequestSubmitOnlyBlankChanges(t *testing.T) {
	svc, _, _ := newChangeRequestFixture()

	_, err := svc.Submit(context.Background(), dto.SubmitChangeRequest{
		InstitutionID: "inst-1",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
		Changes:       []dto.FieldChange{{FieldName: "  ", NewValue: "x"}},
	}, studentClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestSubmitForeignRecord(t *testing.T) {
	svc, _, _ := newChangeRequestFixture()

	claims := studentClaims("inst-1")
	claims.PrincipalID = "stu-2"

	_, err := svc.Submit(context.Background(), dto.SubmitChangeRequest{
		InstitutionID: "inst-1",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
		Changes:       []dto.FieldChange{{FieldName: "mobile", NewValue: "222"}},
	}, claims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestSubmitForeignInstitution(t *testing.T) {
	svc, _, _ := newChangeRequestFixture()

	_, err := svc.Submit(context.Background(), dto.SubmitChangeRequest{
		InstitutionID: "inst-2",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
		Changes:       []dto.FieldChange{{FieldName: "mobile", NewValue: "222"}},
	}, studentClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func pendingRequest() *models.ChangeRequest {
	return &models.ChangeRequest{
		ID:            "cr-1",
		InstitutionID: "inst-1",
		StudentID:     "stu-1",
		RollNo:        "42",
		Section:       "A",
		Class:         "10",
		FieldName:     "mobile",
		NewValue:      "222",
		Status:        models.ChangeRequestStatusPending,
		SubmittedAt:   time.Now().UTC(),
	}
}

func TestChangeRequestReviewApprove(t *testing.T) {
	svc, repo, students := newChangeRequestFixture()
	repo.requests["cr-1"] = pendingRequest()

	reviewed, err := svc.Review(context.Background(), dto.ReviewChangeRequest{
		RequestID: "cr-1",
		Decision:  "approve",
	}, adminClaims("inst-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ChangeRequestStatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "admin-1", *reviewed.ReviewedBy)
	assert.Equal(t, "222", students.fieldUpdates["mobile"])
	assert.Equal(t, models.ChangeRequestStatusApproved, repo.requests["cr-1"].Status)
}

func TestChangeRequestReviewReject(t *testing.T) {
	svc, repo, students := newChangeRequestFixture()
	repo.requests["cr-1"] = pendingRequest()

	reviewed, err := svc.Review(context.Background(), dto.ReviewChangeRequest{
		RequestID: "cr-1",
		Decision:  "reject",
	}, adminClaims("inst-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ChangeRequestStatusRejected, reviewed.Status)
	// Rejection never touches the student row.
	assert.Empty(t, students.fieldUpdates)
}

func TestChangeRequestReviewTerminalConflicts(t *testing.T) {
	svc, repo, _ := newChangeRequestFixture()
	request := pendingRequest()
	request.Status = models.ChangeRequestStatusRejected
	repo.requests["cr-1"] = request

	_, err := svc.Review(context.Background(), dto.ReviewChangeRequest{
		RequestID: "cr-1",
		Decision:  "approve",
	}, adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestReviewVanishedStudent(t *testing.T) {
	svc, repo, students := newChangeRequestFixture()
	repo.requests["cr-1"] = pendingRequest()
	delete(students.students, "stu-1")

	_, err := svc.Review(context.Background(), dto.ReviewChangeRequest{
		RequestID: "cr-1",
		Decision:  "approve",
	}, adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestReviewForeignInstitution(t *testing.T) {
	svc, repo, _ := newChangeRequestFixture()
	repo.requests["cr-1"] = pendingRequest()

	_, err := svc.Review(context.Background(), dto.ReviewChangeRequest{
		RequestID: "cr-1",
		Decision:  "approve",
	}, adminClaims("inst-2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestReviewUnknownRequest(t *testing.T) {
	svc, _, _ := newChangeRequestFixture()

	_, err := svc.Review(context.Background(), dto.ReviewChangeRequest{
		RequestID: "missing",
		Decision:  "approve",
	}, adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestListDefaultsToPending(t *testing.T) {
	svc, repo, _ := newChangeRequestFixture()

	_, err := svc.List(context.Background(), "", adminClaims("inst-1"))
	require.NoError(t, err)
	assert.Equal(t, models.ChangeRequestStatusPending, repo.lastFilter.Status)
	assert.Equal(t, "inst-1", repo.lastFilter.InstitutionID)
}

func TestChangeRequestListOwnScopesToStudent(t *testing.T) {
	svc, repo, _ := newChangeRequestFixture()

	_, err := svc.ListOwn(context.Background(), studentClaims("inst-1"))
	require.NoError(t, err)
	assert.Equal(t, "stu-1", repo.lastFilter.StudentID)
	assert.Empty(t, repo.lastFilter.Status)
}
