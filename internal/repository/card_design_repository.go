package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardnest/cardnest-api/internal/models"
)

// CardDesignRepository manages the global design catalog and the
// institution-submitted custom designs.
type CardDesignRepository struct {
	db *sqlx.DB
}

// NewCardDesignRepository constructs a CardDesignRepository.
func NewCardDesignRepository(db *sqlx.DB) *CardDesignRepository {
	return &CardDesignRepository{db: db}
}

// ListGlobal returns the curated catalog.
func (r *CardDesignRepository) ListGlobal(ctx context.Context) ([]models.CardDesign, error) {
	const query = `SELECT id, name, front_image, back_image, created_at FROM card_designs ORDER BY created_at DESC`
	var designs []models.CardDesign
	if err := r.db.SelectContext(ctx, &designs, query); err != nil {
		return nil, fmt.Errorf("list card designs: %w", err)
	}
	return designs, nil
}

// FindGlobalByID fetches one curated design.
func (r *CardDesignRepository) FindGlobalByID(ctx context.Context, id string) (*models.CardDesign, error) {
	const query = `SELECT id, name, front_image, back_image, created_at FROM card_designs WHERE id = $1`
	var design models.CardDesign
	if err := r.db.GetContext(ctx, &design, query, id); err != nil {
		return nil, err
	}
	return &design, nil
}

// CreateGlobal inserts a curated design.
func (r *CardDesignRepository) CreateGlobal(ctx context.Context, design *models.CardDesign) error {
	if design.ID == "" {
		design.ID = uuid.NewString()
	}
	if design.CreatedAt.IsZero() {
		design.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO card_designs (id, name, front_image, back_image, created_at)
        VALUES (:id, :name, :front_image, :back_image, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, design); err != nil {
		return fmt.Errorf("create card design: %w", err)
	}
	return nil
}

// DeleteGlobal removes a curated design.
func (r *CardDesignRepository) DeleteGlobal(ctx context.Context, id string) error {
	const query = `DELETE FROM card_designs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete card design: %w", err)
	}
	return nil
}

// ListByInstitution returns the custom designs submitted by one tenant.
func (r *CardDesignRepository) ListByInstitution(ctx context.Context, institutionID string) ([]models.InstituteCardDesign, error) {
	const query = `SELECT id, institution_id, name, front_image, back_image, created_at
	FROM institute_card_designs WHERE institution_id = $1 ORDER BY created_at DESC`
	var designs []models.InstituteCardDesign
	if err := r.db.SelectContext(ctx, &designs, query, institutionID); err != nil {
		return nil, fmt.Errorf("list institute card designs: %w", err)
	}
	return designs, nil
}

// CreateForInstitution inserts a custom design for one tenant.
func (r *CardDesignRepository) CreateForInstitution(ctx context.Context, design *models.InstituteCardDesign) error {
	if design.ID == "" {
		design.ID = uuid.NewString()
	}
	if design.CreatedAt.IsZero() {
		design.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO institute_card_designs (id, institution_id, name, front_image, back_image, created_at)
        VALUES (:id, :institution_id, :name, :front_image, :back_image, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, design); err != nil {
		return fmt.Errorf("create institute card design: %w", err)
	}
	return nil
}

// DeleteForInstitution removes a custom design belonging to one tenant.
func (r *CardDesignRepository) DeleteForInstitution(ctx context.Context, institutionID, id string) error {
	const query = `DELETE FROM institute_card_designs WHERE id = $1 AND institution_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, institutionID); err != nil {
		return fmt.Errorf("delete institute card design: %w", err)
	}
	return nil
}
