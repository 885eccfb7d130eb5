package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardnest/cardnest-api/internal/models"
)

const instituteAdminColumns = `id, institution_id, email, full_name, department, password_hash, approved_by, card_design_id, created_at, updated_at`

// AdminRepository manages institute admins, super admins and the audit trail.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// LookupInstituteAdmin resolves an institute admin credential row by email.
func (r *AdminRepository) LookupInstituteAdmin(ctx context.Context, loginID string) (*models.PrincipalRecord, error) {
	const query = `SELECT id, full_name AS display_name, email AS login_id, password_hash, institution_id, department
	FROM institute_admins WHERE email = $1`
	var record models.PrincipalRecord
	if err := r.db.GetContext(ctx, &record, query, loginID); err != nil {
		return nil, err
	}
	return &record, nil
}

// LookupSuperAdmin resolves a super admin credential row by email. Super
// admins carry no institution binding.
func (r *AdminRepository) LookupSuperAdmin(ctx context.Context, loginID string) (*models.PrincipalRecord, error) {
	const query = `SELECT id, full_name AS display_name, email AS login_id, password_hash,
       NULL AS institution_id, NULL AS department
	FROM super_admins WHERE email = $1`
	var record models.PrincipalRecord
	if err := r.db.GetContext(ctx, &record, query, loginID); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindInstituteAdminByID fetches an institute admin by ID.
func (r *AdminRepository) FindInstituteAdminByID(ctx context.Context, id string) (*models.InstituteAdmin, error) {
	query := fmt.Sprintf("SELECT %s FROM institute_admins WHERE id = $1", instituteAdminColumns)
	var admin models.InstituteAdmin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ListInstituteAdmins returns all institute admins, optionally filtered by
// institution.
func (r *AdminRepository) ListInstituteAdmins(ctx context.Context, institutionID string) ([]models.InstituteAdmin, error) {
	query := fmt.Sprintf("SELECT %s FROM institute_admins", instituteAdminColumns)
	args := []interface{}{}
	if institutionID != "" {
		query += " WHERE institution_id = $1"
		args = append(args, institutionID)
	}
	query += " ORDER BY created_at DESC"
	var admins []models.InstituteAdmin
	if err := r.db.SelectContext(ctx, &admins, query, args...); err != nil {
		return nil, fmt.Errorf("list institute admins: %w", err)
	}
	return admins, nil
}

// CreateInstituteAdmin inserts a new institute admin row.
func (r *AdminRepository) CreateInstituteAdmin(ctx context.Context, admin *models.InstituteAdmin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	const query = `INSERT INTO institute_admins (id, institution_id, email, full_name, department, password_hash, approved_by, card_design_id, created_at, updated_at)
        VALUES (:id, :institution_id, :email, :full_name, :department, :password_hash, :approved_by, :card_design_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		return fmt.Errorf("create institute admin: %w", err)
	}
	return nil
}

// DeleteInstituteAdmin removes an admin account. Unlike students and
// employees, admin accounts are hard-deleted.
func (r *AdminRepository) DeleteInstituteAdmin(ctx context.Context, id string) error {
	const query = `DELETE FROM institute_admins WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete institute admin: %w", err)
	}
	return nil
}

// UpdateInstituteAdminPassword replaces the stored credential hash.
func (r *AdminRepository) UpdateInstituteAdminPassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE institute_admins SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update institute admin password: %w", err)
	}
	return nil
}

// UpdateSuperAdminPassword replaces the stored credential hash.
func (r *AdminRepository) UpdateSuperAdminPassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE super_admins SET password_hash = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("update super admin password: %w", err)
	}
	return nil
}

// AssignCardDesign binds a curated design to an institute admin.
func (r *AdminRepository) AssignCardDesign(ctx context.Context, adminID, cardDesignID string) error {
	const query = `UPDATE institute_admins SET card_design_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, adminID, cardDesignID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign card design: %w", err)
	}
	return nil
}

// FindSuperAdminByID fetches a super admin by ID.
func (r *AdminRepository) FindSuperAdminByID(ctx context.Context, id string) (*models.SuperAdmin, error) {
	const query = `SELECT id, email, full_name, password_hash, created_at FROM super_admins WHERE id = $1`
	var admin models.SuperAdmin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateAuditLog records an audit trail entry.
func (r *AdminRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, principal_id, role, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :principal_id, :role, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
