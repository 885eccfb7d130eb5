package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin               = "LOGIN"
	AuditActionPasswordChange      = "PASSWORD_CHANGE"
	AuditActionChangeRequestSubmit = "CHANGE_REQUEST_SUBMIT"
	AuditActionChangeRequestReview = "CHANGE_REQUEST_REVIEW"
	AuditActionStudentImport       = "STUDENT_IMPORT"
	AuditActionAdminCreate         = "ADMIN_CREATE"
	AuditActionAdminDelete         = "ADMIN_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	PrincipalID *string   `db:"principal_id" json:"principal_id,omitempty"`
	Role        *Role     `db:"role" json:"role,omitempty"`
	Action      string    `db:"action" json:"action"`
	Resource    string    `db:"resource" json:"resource"`
	ResourceID  *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues   []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues   []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
