package dto

import "time"

// CategoryRequest alta/edición de categoría.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryResponse categoría en respuestas.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientRequest alta/edición de cliente. Solo name es obligatorio.
type ClientRequest struct {
	Name    string `json:"name"`
	CPF     string `json:"cpf"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierRequest alta/edición de proveedor.
type SupplierRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// SupplierResponse proveedor en respuestas.
type SupplierResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
