package dto

// CreateCardDesignRequest uploads a card template. Images arrive base64
// encoded and are stored as binary.
type CreateCardDesignRequest struct {
	Name       string `json:"name" validate:"required"`
	FrontImage string `json:"front_image" validate:"required,base64"`
	BackImage  string `json:"back_image" validate:"required,base64"`
}
