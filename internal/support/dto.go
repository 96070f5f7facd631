package support

type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

// UpdateTicketRequest edits the text of a ticket. Absent fields are kept.
type UpdateTicketRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitnil,min=1,max=5000"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending resolved"`
}
