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

type cardDesignStore interface {
	ListGlobal(ctx context.Context) ([]models.CardDesign, error)
	FindGlobalByID(ctx context.Context, id string) (*models.CardDesign, error)
	CreateGlobal(ctx context.Context, design *models.CardDesign) error
	DeleteGlobal(ctx context.Context, id string) error
	ListByInstitution(ctx context.Context, institutionID string) ([]models.InstituteCardDesign, error)
	CreateForInstitution(ctx context.Context, design *models.InstituteCardDesign) error
	DeleteForInstitution(ctx context.Context, institutionID, id string) error
}

// CardDesignService manages the curated catalog (super admin) and the
// per-institution custom designs (institute admin).
type CardDesignService struct {
	repo      cardDesignStore
	scope     tenantResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCardDesignService constructs a CardDesignService.
func NewCardDesignService(repo cardDesignStore, scope tenantResolver, validate *validator.Validate, logger *zap.Logger) *CardDesignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CardDesignService{repo: repo, scope: scope, validator: validate, logger: logger}
}

// ListCatalog returns the curated design catalog. Both admin roles may browse
// it.
func (s *CardDesignService) ListCatalog(ctx context.Context, claims *models.SessionClaims) ([]models.CardDesign, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSuperAdmin && claims.Role != models.RoleInstituteAdmin {
		return nil, appErrors.ErrForbidden
	}
	designs, err := s.repo.ListGlobal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list card designs")
	}
	return designs, nil
}

// CreateCatalogDesign adds a design to the curated catalog.
func (s *CardDesignService) CreateCatalogDesign(ctx context.Context, req dto.CreateCardDesignRequest, claims *models.SessionClaims) (*models.CardDesign, error) {
	if err := requireSuperAdmin(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid card design payload")
	}
	front, back, err := decodeDesignImages(req.FrontImage, req.BackImage)
	if err != nil {
		return nil, err
	}

	design := &models.CardDesign{Name: req.Name, FrontImage: front, BackImage: back}
	if err := s.repo.CreateGlobal(ctx, design); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create card design")
	}
	return design, nil
}

// DeleteCatalogDesign removes a curated design.
func (s *CardDesignService) DeleteCatalogDesign(ctx context.Context, id string, claims *models.SessionClaims) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if _, err := s.repo.FindGlobalByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "card design not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load card design")
	}
	if err := s.repo.DeleteGlobal(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete card design")
	}
	return nil
}

// ListInstitutionDesigns returns the caller institution's custom designs.
func (s *CardDesignService) ListInstitutionDesigns(ctx context.Context, claims *models.SessionClaims) ([]models.InstituteCardDesign, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	designs, err := s.repo.ListByInstitution(ctx, scope.InstitutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list card designs")
	}
	return designs, nil
}

// CreateInstitutionDesign stores a custom design under the caller's
// institution.
func (s *CardDesignService) CreateInstitutionDesign(ctx context.Context, req dto.CreateCardDesignRequest, claims *models.SessionClaims) (*models.InstituteCardDesign, error) {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid card design payload")
	}
	front, back, err := decodeDesignImages(req.FrontImage, req.BackImage)
	if err != nil {
		return nil, err
	}

	design := &models.InstituteCardDesign{
		InstitutionID: scope.InstitutionID,
		Name:          req.Name,
		FrontImage:    front,
		BackImage:     back,
	}
	if err := s.repo.CreateForInstitution(ctx, design); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create card design")
	}
	return design, nil
}

// DeleteInstitutionDesign removes a custom design. The delete is scoped to
// the caller's institution, so a foreign id is a no-op.
func (s *CardDesignService) DeleteInstitutionDesign(ctx context.Context, id string, claims *models.SessionClaims) error {
	scope, err := s.scope.Resolve(ctx, claims)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteForInstitution(ctx, scope.InstitutionID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete card design")
	}
	return nil
}

func decodeDesignImages(front, back string) ([]byte, []byte, error) {
	frontImage, err := base64.StdEncoding.DecodeString(front)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "front_image must be base64 encoded")
	}
	backImage, err := base64.StdEncoding.DecodeString(back)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "back_image must be base64 encoded")
	}
	return frontImage, backImage, nil
}
