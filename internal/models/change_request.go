package models

import "time"

// ChangeRequestStatus captures workflow states. Transitions are one-way:
// pending moves to admin_approved or rejected and stays there.
type ChangeRequestStatus string

const (
	ChangeRequestStatusPending  ChangeRequestStatus = "pending"
	ChangeRequestStatusApproved ChangeRequestStatus = "admin_approved"
	ChangeRequestStatusRejected ChangeRequestStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s ChangeRequestStatus) Terminal() bool {
	return s == ChangeRequestStatusApproved || s == ChangeRequestStatusRejected
}

// ChangeRequest is a student's proposed edit to a single field of their own
// record, reviewable only by admins of the owning institution. StudentID is
// captured at submission time so approval targets a stable row even when the
// natural key fields change before review.
type ChangeRequest struct {
	ID            string              `db:"id" json:"id"`
	InstitutionID string              `db:"institution_id" json:"institution_id"`
	StudentID     string              `db:"student_id" json:"student_id"`
	RollNo        string              `db:"roll_no" json:"roll_no"`
	Section       string              `db:"section" json:"section"`
	Class         string              `db:"class" json:"class"`
	FieldName     string              `db:"field_name" json:"field_name"`
	OldValue      string              `db:"old_value" json:"old_value"`
	NewValue      string              `db:"new_value" json:"new_value"`
	Status        ChangeRequestStatus `db:"status" json:"status"`
	SubmittedAt   time.Time           `db:"submitted_at" json:"submitted_at"`
	ReviewedBy    *string             `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time          `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// ChangeRequestDetail joins the student's display name and branch for
// reviewer listings.
type ChangeRequestDetail struct {
	ChangeRequest
	StudentName string  `db:"student_name" json:"student_name"`
	Branch      *string `db:"branch" json:"branch,omitempty"`
}

// ChangeRequestFilter constrains listing queries.
type ChangeRequestFilter struct {
	InstitutionID string
	Status        ChangeRequestStatus
	StudentID     string
	Limit         int
	Offset        int
}
