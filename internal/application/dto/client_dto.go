package dto

import "time"

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"omitempty,max=300"`
	TaxID   string `json:"tax_id" validate:"omitempty,max=40"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAssignmentRequest body para POST /api/assignments.
type CreateAssignmentRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	AssignedTo string `json:"assigned_to" validate:"required"`
}

// AssignmentResponse asignación en respuestas.
type AssignmentResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductType string    `json:"product_type"`
	AssignedTo  string    `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
}
