package dto

// CreateEmployeeRequest registers one employee under the admin's institution.
type CreateEmployeeRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	FullName    string `json:"full_name" validate:"required"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=6"`
}

// UpdateEmployeeRequest carries the editable subset of an employee row.
type UpdateEmployeeRequest struct {
	FullName    string `json:"full_name"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email" validate:"omitempty,email"`
}
