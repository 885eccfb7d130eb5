package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

type institutionStore interface {
	List(ctx context.Context) ([]models.Institution, error)
	FindByID(ctx context.Context, id string) (*models.Institution, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, institution *models.Institution) error
}

type adminStore interface {
	FindInstituteAdminByID(ctx context.Context, id string) (*models.InstituteAdmin, error)
	ListInstituteAdmins(ctx context.Context, institutionID string) ([]models.InstituteAdmin, error)
	CreateInstituteAdmin(ctx context.Context, admin *models.InstituteAdmin) error
	DeleteInstituteAdmin(ctx context.Context, id string) error
	UpdateInstituteAdminPassword(ctx context.Context, id, passwordHash string) error
	AssignCardDesign(ctx context.Context, adminID, cardDesignID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type designCatalog interface {
	FindGlobalByID(ctx context.Context, id string) (*models.CardDesign, error)
}

// InstitutionService covers the super-admin surface: tenants and their
// admins.
type InstitutionService struct {
	institutions institutionStore
	admins       adminStore
	designs      designCatalog
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewInstitutionService constructs an InstitutionService.
func NewInstitutionService(institutions institutionStore, admins adminStore, designs designCatalog, validate *validator.Validate, logger *zap.Logger) *InstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InstitutionService{institutions: institutions, admins: admins, designs: designs, validator: validate, logger: logger}
}

// CreateInstitution registers a new tenant. Code must be globally unique.
func (s *InstitutionService) CreateInstitution(ctx context.Context, req dto.CreateInstitutionRequest, claims *models.SessionClaims) (*models.Institution, error) {
	if err := requireSuperAdmin(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload")
	}

	taken, err := s.institutions.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check institution code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "institution code already in use")
	}

	institution := &models.Institution{
		Name:    req.Name,
		Code:    req.Code,
		Type:    models.InstitutionType(req.Type),
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if req.Logo != "" {
		logo, err := base64.StdEncoding.DecodeString(req.Logo)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "logo must be base64 encoded")
		}
		institution.Logo = logo
	}
	if err := s.institutions.Create(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create institution")
	}
	return institution, nil
}

// ListInstitutions returns all tenants.
func (s *InstitutionService) ListInstitutions(ctx context.Context, claims *models.SessionClaims) ([]models.Institution, error) {
	if err := requireSuperAdmin(claims); err != nil {
		return nil, err
	}
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list institutions")
	}
	return institutions, nil
}

// GetInstitution fetches one tenant.
func (s *InstitutionService) GetInstitution(ctx context.Context, id string, claims *models.SessionClaims) (*models.Institution, error) {
	if err := requireSuperAdmin(claims); err != nil {
		return nil, err
	}
	institution, err := s.institutions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	return institution, nil
}

// CreateAdmin registers an institute admin, recording the approving super
// admin.
func (s *InstitutionService) CreateAdmin(ctx context.Context, req dto.CreateInstituteAdminRequest, claims *models.SessionClaims) (*models.InstituteAdmin, error) {
	if err := requireSuperAdmin(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin payload")
	}

	if _, err := s.institutions.FindByID(ctx, req.InstitutionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.InstituteAdmin{
		InstitutionID: req.InstitutionID,
		Email:         req.Email,
		FullName:      req.FullName,
		PasswordHash:  hash,
		ApprovedBy:    &claims.PrincipalID,
	}
	if req.Department != "" {
		admin.Department = &req.Department
	}
	if err := s.admins.CreateInstituteAdmin(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.emitAudit(ctx, claims, models.AuditActionAdminCreate, admin.ID, map[string]string{"email": admin.Email})
	return admin, nil
}

// ListAdmins returns institute admins, optionally filtered by institution.
func (s *InstitutionService) ListAdmins(ctx context.Context, institutionID string, claims *models.SessionClaims) ([]models.InstituteAdmin, error) {
	if err := requireSuperAdmin(claims); err != nil {
		return nil, err
	}
	admins, err := s.admins.ListInstituteAdmins(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// DeleteAdmin removes an institute admin account.
func (s *InstitutionService) DeleteAdmin(ctx context.Context, id string, claims *models.SessionClaims) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if _, err := s.admins.FindInstituteAdminByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	if err := s.admins.DeleteInstituteAdmin(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete admin")
	}
	s.emitAudit(ctx, claims, models.AuditActionAdminDelete, id, nil)
	return nil
}

// ChangeAdminPassword replaces an institute admin's credential.
func (s *InstitutionService) ChangeAdminPassword(ctx context.Context, id, newPassword string, claims *models.SessionClaims) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
	}
	if _, err := s.admins.FindInstituteAdminByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.admins.UpdateInstituteAdminPassword(ctx, id, hash); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change password")
	}
	s.emitAudit(ctx, claims, models.AuditActionPasswordChange, id, nil)
	return nil
}

// AssignCardDesign binds a curated design to an institute admin.
func (s *InstitutionService) AssignCardDesign(ctx context.Context, adminID, designID string, claims *models.SessionClaims) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if _, err := s.admins.FindInstituteAdminByID(ctx, adminID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	if _, err := s.designs.FindGlobalByID(ctx, designID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "card design not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load card design")
	}
	if err := s.admins.AssignCardDesign(ctx, adminID, designID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign card design")
	}
	return nil
}

func (s *InstitutionService) emitAudit(ctx context.Context, claims *models.SessionClaims, action, resourceID string, payload interface{}) {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	role := claims.Role
	if err := s.admins.CreateAuditLog(ctx, &models.AuditLog{
		PrincipalID: &claims.PrincipalID,
		Role:        &role,
		Action:      action,
		Resource:    "institute_admin",
		ResourceID:  &resourceID,
		NewValues:   body,
	}); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func requireSuperAdmin(claims *models.SessionClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSuperAdmin {
		return appErrors.ErrForbidden
	}
	return nil
}
