package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardnest/cardnest-api/internal/models"
)

const institutionColumns = `id, name, code, type, address, phone, email, logo, created_at, updated_at`

// InstitutionRepository manages tenant records.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs an InstitutionRepository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// List returns all institutions, newest first.
func (r *InstitutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	query := fmt.Sprintf("SELECT %s FROM institutions ORDER BY created_at DESC", institutionColumns)
	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query); err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return institutions, nil
}

// FindByID fetches an institution by ID.
func (r *InstitutionRepository) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	query := fmt.Sprintf("SELECT %s FROM institutions WHERE id = $1", institutionColumns)
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, id); err != nil {
		return nil, err
	}
	return &institution, nil
}

// ExistsByCode checks the global uniqueness of an institution code.
func (r *InstitutionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM institutions WHERE code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check institution code: %w", err)
	}
	return true, nil
}

// Create inserts a new institution.
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == "" {
		institution.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if institution.CreatedAt.IsZero() {
		institution.CreatedAt = now
	}
	institution.UpdatedAt = now
	const query = `INSERT INTO institutions (id, name, code, type, address, phone, email, logo, created_at, updated_at)
        VALUES (:id, :name, :code, :type, :address, :phone, :email, :logo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, institution); err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}
