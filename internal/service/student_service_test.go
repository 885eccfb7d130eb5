package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
	"github.com/cardnest/cardnest-api/pkg/export"
)

type stubScope struct {
	scope TenantScope
	err   error
}

func (s stubScope) Resolve(ctx context.Context, claims *models.SessionClaims) (TenantScope, error) {
	return s.scope, s.err
}

type mockStudentRepo struct {
	students        map[string]*models.Student
	lastInstitution string
	lastFilter      models.StudentFilter
	payments        map[string]models.PaymentStatus
	photos          map[string][]byte
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students: map[string]*models.Student{},
		payments: map[string]models.PaymentStatus{},
		photos:   map[string][]byte{},
	}
}

func (m *mockStudentRepo) List(ctx context.Context, institutionID string, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastInstitution = institutionID
	m.lastFilter = filter
	out := make([]models.Student, 0, len(m.students))
	for _, student := range m.students {
		if student.InstitutionID != institutionID {
			continue
		}
		if filter.Branch != "" && (student.Branch == nil || *student.Branch != filter.Branch) {
			continue
		}
		out = append(out, *student)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *student
	return &copied, nil
}

func (m *mockStudentRepo) ExistsByRollNo(ctx context.Context, institutionID, rollNo, section, class string) (bool, error) {
	for _, student := range m.students {
		if student.InstitutionID == institutionID && student.RollNo == rollNo && student.Section == section && student.Class == class {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = fmt.Sprintf("stu-%d", len(m.students)+1)
	}
	copied := *student
	m.students[student.ID] = &copied
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *student
	m.students[student.ID] = &copied
	return nil
}

func (m *mockStudentRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	m.payments[id] = status
	return nil
}

func (m *mockStudentRepo) UpdatePhoto(ctx context.Context, id string, photo []byte) error {
	m.photos[id] = photo
	return nil
}

func strPtr(s string) *string { return &s }

func seedStudent(repo *mockStudentRepo, id, branch string) {
	repo.students[id] = &models.Student{
		ID:            id,
		InstitutionID: "inst-1",
		RollNo:        "roll-" + id,
		Section:       "A",
		Class:         "10",
		Branch:        strPtr(branch),
		FullName:      "Student " + id,
		Mobile:        "0123456789",
		PaymentStatus: models.PaymentStatusUnpaid,
	}
}

func newStudentFixture(scope TenantScope) (*StudentService, *mockStudentRepo) {
	repo := newMockStudentRepo()
	svc := NewStudentService(repo, nil, stubScope{scope: scope}, export.NewCSVExporter(), export.NewPDFExporter(), nil, nil)
	return svc, repo
}

func TestStudentListDepartmentOverridesBranchFilter(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1", Department: "CSE"})
	seedStudent(repo, "s1", "CSE")
	seedStudent(repo, "s2", "EEE")

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Branch: "EEE"}, adminClaims("inst-1"))
	require.NoError(t, err)

	// The session-derived department wins over the requested branch.
	assert.Equal(t, "CSE", repo.lastFilter.Branch)
	assert.Equal(t, "inst-1", repo.lastInstitution)
	require.Len(t, students, 1)
	assert.Equal(t, "s1", students[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestStudentGetOutsideDepartment(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1", Department: "CSE"})
	seedStudent(repo, "s1", "EEE")

	_, err := svc.Get(context.Background(), "s1", adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentGetForeignInstitution(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-2"})
	seedStudent(repo, "s1", "CSE")

	_, err := svc.Get(context.Background(), "s1", adminClaims("inst-2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentCreate(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})

	student, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNo:   "42",
		Section:  "A",
		Class:    "10",
		Branch:   "CSE",
		FullName: "Asha Rao",
		Mobile:   "0123456789",
		Password: "secret123",
	}, adminClaims("inst-1"))
	require.NoError(t, err)

	assert.Equal(t, "inst-1", student.InstitutionID)
	assert.Equal(t, models.PaymentStatusUnpaid, student.PaymentStatus)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("secret123")))
	assert.Len(t, repo.students, 1)
}

func TestStudentCreateDuplicateRollNo(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})
	repo.students["s1"] = &models.Student{ID: "s1", InstitutionID: "inst-1", RollNo: "42", Section: "A", Class: "10"}

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNo:   "42",
		Section:  "A",
		Class:    "10",
		FullName: "Asha Rao",
		Mobile:   "0123456789",
		Password: "secret123",
	}, adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdatePaymentStatus(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})
	seedStudent(repo, "s1", "CSE")

	require.NoError(t, svc.UpdatePaymentStatus(context.Background(), "s1", models.PaymentStatusPaid, adminClaims("inst-1")))
	assert.Equal(t, models.PaymentStatusPaid, repo.payments["s1"])

	err := svc.UpdatePaymentStatus(context.Background(), "s1", models.PaymentStatus("waived"), adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentUploadPhotoRejectsBadEncoding(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})
	seedStudent(repo, "s1", "CSE")

	err := svc.UploadPhoto(context.Background(), "s1", "not base64!!", adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.photos)
}

func TestStudentImportSpreadsheet(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"roll_no", "section", "class", "branch", "batch_start", "batch_end", "full_name", "mobile", "email", "address", "blood_group", "guardian_name", "password"},
		{"1", "A", "10", "CSE", "2023", "2027", "Asha Rao", "0123456789", "asha@example.com", "", "O+", "R Rao", "secret123"},
		{"2", "A", "10", "CSE", "2023", "2027", "Vik Shah", "0123456780", "", "", "", "", "secret123"},
		{"3", "A", "10", "CSE", "notayear", "2027", "Bad Batch", "0123456781", "", "", "", "", "secret123"},
	}
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}

	summary, err := svc.ImportSpreadsheet(context.Background(), f, adminClaims("inst-1"))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 4, summary.Errors[0].Row)
	assert.Len(t, repo.students, 2)
}

func TestStudentImportDuplicateRowReported(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})
	repo.students["s1"] = &models.Student{ID: "s1", InstitutionID: "inst-1", RollNo: "1", Section: "A", Class: "10"}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	row := []interface{}{"1", "A", "10", "CSE", "2023", "2027", "Asha Rao", "0123456789", "", "", "", "", "secret123"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &row))

	summary, err := svc.ImportSpreadsheet(context.Background(), f, adminClaims("inst-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Failed)
}

func TestStudentExportCSV(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})
	seedStudent(repo, "s1", "CSE")

	data, err := svc.ExportCSV(context.Background(), models.StudentFilter{}, adminClaims("inst-1"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "roll_no")
	assert.Contains(t, string(data), "roll-s1")
}

func TestStudentExportCardSheetEmptyRoster(t *testing.T) {
	svc, _ := newStudentFixture(TenantScope{InstitutionID: "inst-1"})

	_, err := svc.ExportCardSheet(context.Background(), models.StudentFilter{}, adminClaims("inst-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentExportCardSheet(t *testing.T) {
	svc, repo := newStudentFixture(TenantScope{InstitutionID: "inst-1"})
	seedStudent(repo, "s1", "CSE")

	data, err := svc.ExportCardSheet(context.Background(), models.StudentFilter{}, adminClaims("inst-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
