package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardnest/cardnest-api/internal/models"
)

// ChangeRequestRepository persists change-request workflow data.
type ChangeRequestRepository struct {
	db *sqlx.DB
}

// NewChangeRequestRepository constructs the repository.
func NewChangeRequestRepository(db *sqlx.DB) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db}
}

// Create inserts a new change-request row in pending state.
func (r *ChangeRequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.ChangeRequestStatusPending
	}
	if request.SubmittedAt.IsZero() {
		request.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO change_requests
	(id, institution_id, student_id, roll_no, section, class, field_name, old_value, new_value, status, submitted_at, reviewed_by, reviewed_at)
	VALUES (:id, :institution_id, :student_id, :roll_no, :section, :class, :field_name, :old_value, :new_value, :status, :submitted_at, :reviewed_by, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// GetByID fetches a change request by identifier.
func (r *ChangeRequestRepository) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	const query = `SELECT id, institution_id, student_id, roll_no, section, class, field_name, old_value, new_value,
       status, submitted_at, reviewed_by, reviewed_at
	FROM change_requests WHERE id = $1`
	var request models.ChangeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns change requests matching the filter joined with the student's
// display name and branch, newest first.
func (r *ChangeRequestRepository) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(`SELECT cr.id, cr.institution_id, cr.student_id, cr.roll_no, cr.section, cr.class,
       cr.field_name, cr.old_value, cr.new_value, cr.status, cr.submitted_at, cr.reviewed_by, cr.reviewed_at,
       s.full_name AS student_name, s.branch
	FROM change_requests cr JOIN students s ON s.id = cr.student_id`)

	conditions := make([]string, 0, 3)
	if filter.InstitutionID != "" {
		args = append(args, filter.InstitutionID)
		conditions = append(conditions, fmt.Sprintf("cr.institution_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("cr.status = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("cr.student_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY cr.submitted_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.ChangeRequestDetail
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus persists the review outcome. The WHERE clause pins the row to
// pending so a request already in a terminal state is never re-reviewed; the
// caller sees sql.ErrNoRows in that case.
func (r *ChangeRequestRepository) UpdateStatus(ctx context.Context, id string, status models.ChangeRequestStatus, reviewerID string, reviewedAt time.Time) error {
	const query = `UPDATE change_requests SET status = $2, reviewed_by = $3, reviewed_at = $4
	WHERE id = $1 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, id, status, reviewerID, reviewedAt, models.ChangeRequestStatusPending)
	if err != nil {
		return fmt.Errorf("update change request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check change request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountPending tallies pending requests for one tenant.
func (r *ChangeRequestRepository) CountPending(ctx context.Context, institutionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM change_requests WHERE institution_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, institutionID, models.ChangeRequestStatusPending); err != nil {
		return 0, fmt.Errorf("count pending change requests: %w", err)
	}
	return count, nil
}
