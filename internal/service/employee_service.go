package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

type employeeStore interface {
	List(ctx context.Context, institutionID string, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	UpdatePhoto(ctx context.Context, id string, photo []byte) error
}

// EmployeeService manages employee records inside the caller's tenant scope.
type EmployeeService struct {
	repo      employeeStore
	scope     tenantResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeStore, scope tenantResolver, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{repo: repo, scope: scope, validator: validate, logger: logger}
}

// List returns employees of the caller's institution.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter, claims *models.SessionClaims) ([]models.Employee, *models.Pagination, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, nil, err
	}

	employees, total, err := s.repo.List(ctx, scope.InstitutionID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one employee, enforcing tenant scope.
func (s *EmployeeService) Get(ctx context.Context, id string, claims *models.SessionClaims) (*models.Employee, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if employee.InstitutionID != scope.InstitutionID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "employee belongs to another institution")
	}
	return employee, nil
}

// Create registers one employee under the caller's institution.
func (s *EmployeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest, claims *models.SessionClaims) (*models.Employee, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	employee := &models.Employee{
		InstitutionID: scope.InstitutionID,
		EmployeeID:    req.EmployeeID,
		FullName:      req.FullName,
		Department:    req.Department,
		Designation:   req.Designation,
		Mobile:        req.Mobile,
		Email:         req.Email,
		PasswordHash:  hash,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return employee, nil
}

// Update modifies the editable fields of an employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req dto.UpdateEmployeeRequest, claims *models.SessionClaims) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	employee, err := s.Get(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		employee.FullName = req.FullName
	}
	if req.Department != "" {
		employee.Department = req.Department
	}
	if req.Designation != "" {
		employee.Designation = req.Designation
	}
	if req.Mobile != "" {
		employee.Mobile = req.Mobile
	}
	if req.Email != "" {
		employee.Email = req.Email
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// UploadPhoto stores a base64 encoded profile image on the employee row.
func (s *EmployeeService) UploadPhoto(ctx context.Context, id string, encoded string, claims *models.SessionClaims) error {
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
