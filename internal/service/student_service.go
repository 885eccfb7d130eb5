package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
	"github.com/cardnest/cardnest-api/pkg/export"
)

type studentStore interface {
	List(ctx context.Context, institutionID string, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByRollNo(ctx context.Context, institutionID, rollNo, section, class string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	UpdatePhoto(ctx context.Context, id string, photo []byte) error
}

type tenantResolver interface {
	Resolve(ctx context.Context, claims *models.SessionClaims) (TenantScope, error)
}

type cardSheetExporter interface {
	RenderCardSheet(title string, cards []export.Card) ([]byte, error)
}

type rosterExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type institutionDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Institution, error)
}

// StudentService manages student records inside the caller's tenant scope.
type StudentService struct {
	repo         studentStore
	institutions institutionDirectory
	scope        tenantResolver
	csv          rosterExporter
	pdf          cardSheetExporter
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentStore, institutions institutionDirectory, scope tenantResolver, csv rosterExporter, pdf cardSheetExporter, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, institutions: institutions, scope: scope, csv: csv, pdf: pdf, validator: validate, logger: logger}
}

// List returns students visible to the caller. The tenant scope is applied
// before any caller-supplied filter; an admin with a department sees only
// students of that branch, regardless of the requested branch filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, claims *models.SessionClaims) ([]models.Student, *models.Pagination, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	if scope.Department != "" {
		filter.Branch = scope.Department
	}

	students, total, err := s.repo.List(ctx, scope.InstitutionID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one student, enforcing tenant and branch scope.
func (s *StudentService) Get(ctx context.Context, id string, claims *models.SessionClaims) (*models.Student, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.checkScope(student, scope); err != nil {
		return nil, err
	}
	return student, nil
}

// Create registers one student under the caller's institution.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest, claims *models.SessionClaims) (*models.Student, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	taken, err := s.repo.ExistsByRollNo(ctx, scope.InstitutionID, req.RollNo, req.Section, req.Class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already registered for this section and class")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		InstitutionID: scope.InstitutionID,
		RollNo:        req.RollNo,
		Section:       req.Section,
		Class:         req.Class,
		BatchStart:    req.BatchStart,
		BatchEnd:      req.BatchEnd,
		FullName:      req.FullName,
		Mobile:        req.Mobile,
		Email:         req.Email,
		Address:       req.Address,
		BloodGroup:    req.BloodGroup,
		GuardianName:  req.GuardianName,
		PaymentStatus: models.PaymentStatusUnpaid,
		PasswordHash:  hash,
	}
	if req.Branch != "" {
		student.Branch = &req.Branch
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies the admin-editable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest, claims *models.SessionClaims) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		student.FullName = req.FullName
	}
	if req.Mobile != "" {
		student.Mobile = req.Mobile
	}
	if req.Email != "" {
		student.Email = req.Email
	}
	if req.Address != "" {
		student.Address = req.Address
	}
	if req.BloodGroup != "" {
		student.BloodGroup = req.BloodGroup
	}
	if req.GuardianName != "" {
		student.GuardianName = req.GuardianName
	}
	if req.Branch != "" {
		student.Branch = &req.Branch
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// UpdatePaymentStatus flips a student's card-fee status.
func (s *StudentService) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, claims *models.SessionClaims) error {
	if status != models.PaymentStatusPaid && status != models.PaymentStatusUnpaid {
		return appErrors.Clone(appErrors.ErrValidation, "payment status must be paid or unpaid")
	}
	if _, err := s.Get(ctx, id, claims); err != nil {
		return err
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
	}
	return nil
}

// UploadPhoto stores a base64 encoded profile image on the student row.
func (s *StudentService) UploadPhoto(ctx context.Context, id string, encoded string, claims *models.SessionClaims) error {
	photo, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "photo must be base64 encoded")
	}
	if _, err := s.Get(ctx, id, claims); err != nil {
		return err
	}
	if err := s.repo.UpdatePhoto(ctx, id, photo); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	return nil
}

// importColumns is the expected spreadsheet column order for bulk imports.
var importColumns = []string{"roll_no", "section", "class", "branch", "batch_start", "batch_end", "full_name", "mobile", "email", "address", "blood_group", "guardian_name", "password"}

// ImportSpreadsheet reads an xlsx workbook and registers one student per
// row. Rows are written one at a time with no transaction wrapping; a
// failure partway through leaves the rows already written in place, and the
// summary reports both outcomes.
func (s *StudentService) ImportSpreadsheet(ctx context.Context, file *excelize.File, claims *models.SessionClaims) (*dto.ImportSummary, error) {
	if _, err := s.scope.Resolve(ctx, claims); err != nil {
		return nil, err
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook contains no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "failed to read sheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheet is empty")
	}

	start := 0
	if len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), importColumns[0]) {
		start = 1
	}

	summary := &dto.ImportSummary{}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		req, err := parseImportRow(row)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: err.Error()})
			continue
		}
		if _, err := s.Create(ctx, req, claims); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: appErrors.FromError(err).Message})
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

// ExportCSV renders the visible roster as CSV.
func (s *StudentService) ExportCSV(ctx context.Context, filter models.StudentFilter, claims *models.SessionClaims) ([]byte, error) {
	filter.PageSize = 100
	filter.Page = 1
	students, _, err := s.List(ctx, filter, claims)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"roll_no", "section", "class", "branch", "full_name", "mobile", "email", "payment_status"},
	}
	for _, student := range students {
		branch := ""
		if student.Branch != nil {
			branch = *student.Branch
		}
		data.Rows = append(data.Rows, map[string]string{
			"roll_no":        student.RollNo,
			"section":        student.Section,
			"class":          student.Class,
			"branch":         branch,
			"full_name":      student.FullName,
			"mobile":         student.Mobile,
			"email":          student.Email,
			"payment_status": string(student.PaymentStatus),
		})
	}
	return s.csv.Render(data)
}

// ExportCardSheet renders the visible roster as a printable ID-card PDF.
func (s *StudentService) ExportCardSheet(ctx context.Context, filter models.StudentFilter, claims *models.SessionClaims) ([]byte, error) {
	filter.PageSize = 100
	filter.Page = 1
	students, _, err := s.List(ctx, filter, claims)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no students match the filter")
	}

	institutionName := ""
	if s.institutions != nil && claims.InstitutionID != nil {
		if institution, err := s.institutions.FindByID(ctx, *claims.InstitutionID); err == nil {
			institutionName = institution.Name
		} else {
			s.logger.Warn("failed to resolve institution name for card sheet", zap.Error(err))
		}
	}

	cards := make([]export.Card, 0, len(students))
	for _, student := range students {
		branch := ""
		if student.Branch != nil {
			branch = *student.Branch
		}
		cards = append(cards, export.Card{
			Name:        student.FullName,
			LoginID:     "Roll No: " + student.RollNo,
			Line1:       fmt.Sprintf("Class %s / Section %s", student.Class, student.Section),
			Line2:       branch,
			Institution: institutionName,
		})
	}
	return s.pdf.RenderCardSheet("ID Cards", cards)
}

func (s *StudentService) checkScope(student *models.Student, scope TenantScope) error {
	if student.InstitutionID != scope.InstitutionID {
		return appErrors.Clone(appErrors.ErrForbidden, "student belongs to another institution")
	}
	if scope.Department != "" {
		if student.Branch == nil || *student.Branch != scope.Department {
			return appErrors.Clone(appErrors.ErrForbidden, "student is outside your department")
		}
	}
	return nil
}

func parseImportRow(row []string) (dto.CreateStudentRequest, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	req := dto.CreateStudentRequest{
		RollNo:       cell(0),
		Section:      cell(1),
		Class:        cell(2),
		Branch:       cell(3),
		FullName:     cell(6),
		Mobile:       cell(7),
		Email:        cell(8),
		Address:      cell(9),
		BloodGroup:   cell(10),
		GuardianName: cell(11),
		Password:     cell(12),
	}
	if raw := cell(4); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("batch_start must be a year")
		}
		req.BatchStart = year
	}
	if raw := cell(5); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("batch_end must be a year")
		}
		req.BatchEnd = year
	}
	if req.RollNo == "" || req.FullName == "" {
		return req, fmt.Errorf("roll_no and full_name are required")
	}
	return req, nil
}
