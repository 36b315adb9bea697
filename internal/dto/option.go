package dto

// CreateOptionRequest adds an option to the end of a category.
type CreateOptionRequest struct {
	Category    string  `json:"category" validate:"required,max=64"`
	Label       string  `json:"label" validate:"required,max=255"`
	Value       string  `json:"value" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

// UpdateOptionRequest replaces label, value and description of an option.
type UpdateOptionRequest struct {
	Label       string  `json:"label" validate:"required,max=255"`
	Value       string  `json:"value" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

// OptionIDResponse is returned after a create.
type OptionIDResponse struct {
	ID string `json:"id"`
}
