package dto

// CreateStudentRequest registers one student under the admin's institution.
type CreateStudentRequest struct {
	RollNo       string `json:"roll_no" validate:"required"`
	Section      string `json:"section" validate:"required"`
	Class        string `json:"class" validate:"required"`
	Branch       string `json:"branch"`
	BatchStart   int    `json:"batch_start"`
	BatchEnd     int    `json:"batch_end"`
	FullName     string `json:"full_name" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address"`
	BloodGroup   string `json:"blood_group"`
	GuardianName string `json:"guardian_name"`
	Password     string `json:"password" validate:"required,min=6"`
}

// UpdateStudentRequest carries the admin-editable subset of a student row.
type UpdateStudentRequest struct {
	FullName     string `json:"full_name"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address"`
	BloodGroup   string `json:"blood_group"`
	GuardianName string `json:"guardian_name"`
	Branch       string `json:"branch"`
}

// UpdatePaymentStatusRequest flips a student's card-fee status.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid unpaid"`
}

// UploadPhotoRequest carries a base64 encoded profile image.
type UploadPhotoRequest struct {
	Photo string `json:"photo" validate:"required,base64"`
}

// ImportRowError reports one failed spreadsheet row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportSummary reports the outcome of a bulk import. Rows are written one at
// a time; a failure partway leaves earlier rows in place.
type ImportSummary struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}
