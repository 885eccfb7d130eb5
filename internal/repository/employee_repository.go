package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardnest/cardnest-api/internal/models"
)

const employeeColumns = `id, institution_id, employee_id, full_name, department, designation, mobile, email,
       password_hash, photo, created_at, updated_at`

// EmployeeRepository manages persistence for employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns employees of one institution matching the filter.
func (r *EmployeeRepository) List(ctx context.Context, institutionID string, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	args := []interface{}{institutionID}
	conditions := []string{"institution_id = $1"}

	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(employee_id) LIKE $%d)", len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM employees WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		employeeColumns, where, size, offset)

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// FindByID fetches an employee by ID.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Lookup resolves an employee credential row by employee id.
func (r *EmployeeRepository) Lookup(ctx context.Context, loginID string) (*models.PrincipalRecord, error) {
	const query = `SELECT id, full_name AS display_name, employee_id AS login_id, password_hash, institution_id, department
	FROM employees WHERE employee_id = $1`
	var record models.PrincipalRecord
	if err := r.db.GetContext(ctx, &record, query, loginID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now
	const query = `INSERT INTO employees (id, institution_id, employee_id, full_name, department, designation, mobile, email, password_hash, photo, created_at, updated_at)
        VALUES (:id, :institution_id, :employee_id, :full_name, :department, :designation, :mobile, :email, :password_hash, :photo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies the editable subset of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET full_name = :full_name, department = :department, designation = :designation,
        mobile = :mobile, email = :email, updated_at = :updated_at
        WHERE id = :id AND institution_id = :institution_id`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (r *EmployeeRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE employees SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("update employee password: %w", err)
	}
	return nil
}

// UpdatePhoto stores the profile image bytes.
func (r *EmployeeRepository) UpdatePhoto(ctx context.Context, id string, photo []byte) error {
	const query = `UPDATE employees SET photo = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, photo, time.Now().UTC()); err != nil {
		return fmt.Errorf("update employee photo: %w", err)
	}
	return nil
}

// Count tallies employees for one tenant.
func (r *EmployeeRepository) Count(ctx context.Context, institutionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM employees WHERE institution_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, institutionID); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return count, nil
}
