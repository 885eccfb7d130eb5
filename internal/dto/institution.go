package dto

// CreateInstitutionRequest registers a new tenant. Code must be globally
// unique.
type CreateInstitutionRequest struct {
	Name    string `json:"name" validate:"required"`
	Code    string `json:"code" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=school college company"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Logo    string `json:"logo" validate:"omitempty,base64"`
}

// CreateInstituteAdminRequest registers an admin for one institution.
type CreateInstituteAdminRequest struct {
	InstitutionID string `json:"institution_id" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	FullName      string `json:"full_name" validate:"required"`
	Department    string `json:"department"`
	Password      string `json:"password" validate:"required,min=6"`
}

// AssignCardDesignRequest binds a curated design to an institute admin.
type AssignCardDesignRequest struct {
	CardDesignID string `json:"card_design_id" validate:"required"`
}
