package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardnest/cardnest-api/internal/dto"
	"github.com/cardnest/cardnest-api/internal/models"
)

// editableStudentColumns is the closed set of columns a change request may
// touch. Anything outside this map never reaches a query.
var editableStudentColumns = map[string]string{
	"full_name":     "full_name",
	"mobile":        "mobile",
	"email":         "email",
	"address":       "address",
	"blood_group":   "blood_group",
	"guardian_name": "guardian_name",
}

// EditableStudentField resolves a client-supplied field name to a column,
// reporting whether it is allowed.
func EditableStudentField(fieldName string) (string, bool) {
	column, ok := editableStudentColumns[strings.ToLower(strings.TrimSpace(fieldName))]
	return column, ok
}

const studentColumns = `id, institution_id, roll_no, section, class, branch, batch_start, batch_end,
       full_name, mobile, email, address, blood_group, guardian_name, payment_status, password_hash, photo,
       created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students of one institution matching the provided filters.
// institutionID is mandatory; it comes from the session, never the caller.
func (r *StudentRepository) List(ctx context.Context, institutionID string, filter models.StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{institutionID}
	conditions := []string{"institution_id = $1"}

	if filter.Branch != "" {
		args = append(args, filter.Branch)
		conditions = append(conditions, fmt.Sprintf("branch = $%d", len(args)))
	}
	if filter.RollNo != "" {
		args = append(args, filter.RollNo)
		conditions = append(conditions, fmt.Sprintf("roll_no = $%d", len(args)))
	}
	if filter.BatchStart > 0 {
		args = append(args, filter.BatchStart)
		conditions = append(conditions, fmt.Sprintf("batch_start = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(roll_no) LIKE $%d)", len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"roll_no":    "roll_no",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, where, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByNaturalKey fetches a student by the (institution, roll, section,
// class) tuple used in change-request submissions.
func (r *StudentRepository) FindByNaturalKey(ctx context.Context, institutionID, rollNo, section, class string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE institution_id = $1 AND roll_no = $2 AND section = $3 AND class = $4", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, institutionID, rollNo, section, class); err != nil {
		return nil, err
	}
	return &student, nil
}

// Lookup resolves a student credential row by roll number within an
// institution-agnostic search (roll numbers repeat across institutions, so
// the login form also carries the institution code upstream).
func (r *StudentRepository) Lookup(ctx context.Context, loginID string) (*models.PrincipalRecord, error) {
	const query = `SELECT id, full_name AS display_name, roll_no AS login_id, password_hash, institution_id, branch AS department
	FROM students WHERE roll_no = $1`
	var record models.PrincipalRecord
	if err := r.db.GetContext(ctx, &record, query, loginID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.PaymentStatus == "" {
		student.PaymentStatus = models.PaymentStatusUnpaid
	}
	const query = `INSERT INTO students (id, institution_id, roll_no, section, class, branch, batch_start, batch_end,
        full_name, mobile, email, address, blood_group, guardian_name, payment_status, password_hash, photo, created_at, updated_at)
        VALUES (:id, :institution_id, :roll_no, :section, :class, :branch, :batch_start, :batch_end,
        :full_name, :mobile, :email, :address, :blood_group, :guardian_name, :payment_status, :password_hash, :photo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the admin-editable subset of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, mobile = :mobile, email = :email, address = :address,
        blood_group = :blood_group, guardian_name = :guardian_name, branch = :branch, updated_at = :updated_at
        WHERE id = :id AND institution_id = :institution_id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateField writes a single allow-listed column on a student row. The
// column must come from EditableStudentField; raw client strings are refused.
func (r *StudentRepository) UpdateField(ctx context.Context, studentID, column, value string) error {
	if _, ok := editableStudentColumns[column]; !ok {
		return fmt.Errorf("column %q is not editable", column)
	}
	query := fmt.Sprintf("UPDATE students SET %s = $1, updated_at = $2 WHERE id = $3", column)
	result, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), studentID)
	if err != nil {
		return fmt.Errorf("update student field: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check student field update: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePaymentStatus flips the card-fee status.
func (r *StudentRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	const query = `UPDATE students SET payment_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// UpdatePhoto stores the profile image bytes.
func (r *StudentRepository) UpdatePhoto(ctx context.Context, id string, photo []byte) error {
	const query = `UPDATE students SET photo = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, photo, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student photo: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE students SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student password: %w", err)
	}
	return nil
}

// ExistsByRollNo checks whether the natural key tuple is already taken inside
// an institution.
func (r *StudentRepository) ExistsByRollNo(ctx context.Context, institutionID, rollNo, section, class string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE institution_id = $1 AND roll_no = $2 AND section = $3 AND class = $4 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, institutionID, rollNo, section, class); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll no: %w", err)
	}
	return true, nil
}

// CountByPaymentStatus tallies students per payment status for one tenant.
func (r *StudentRepository) CountByPaymentStatus(ctx context.Context, institutionID string, status models.PaymentStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE institution_id = $1 AND payment_status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, institutionID, status); err != nil {
		return 0, fmt.Errorf("count students by payment: %w", err)
	}
	return count, nil
}

// CountByBranch tallies students per branch for one tenant.
func (r *StudentRepository) CountByBranch(ctx context.Context, institutionID string) ([]dto.BranchCount, error) {
	const query = `SELECT COALESCE(branch, '') AS branch, COUNT(*) AS count FROM students
	WHERE institution_id = $1 GROUP BY branch ORDER BY branch`
	var counts []dto.BranchCount
	if err := r.db.SelectContext(ctx, &counts, query, institutionID); err != nil {
		return nil, fmt.Errorf("count students by branch: %w", err)
	}
	return counts, nil
}
