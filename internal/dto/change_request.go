package dto

// FieldChange is one proposed (field, old, new) triple. Triples with an empty
// field name are silently dropped at submission.
type FieldChange struct {
	FieldName string `json:"field_name"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
}

// SubmitChangeRequest is the student-facing submission payload. The natural
// key tuple must match the submitting student's own record exactly.
type SubmitChangeRequest struct {
	InstitutionID string        `json:"institution_id" validate:"required"`
	RollNo        string        `json:"roll_no" validate:"required"`
	Section       string        `json:"section" validate:"required"`
	Class         string        `json:"class" validate:"required"`
	Changes       []FieldChange `json:"changes" validate:"required,min=1"`
}

// ReviewChangeRequest carries the reviewer decision.
type ReviewChangeRequest struct {
	RequestID string `json:"request_id" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=approve reject"`
}
