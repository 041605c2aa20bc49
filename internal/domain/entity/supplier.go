package entity

import "time"

// Supplier proveedor de mercadería.
type Supplier struct {
	ID          string
	Name        string
	ContactName string
	Phone       string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
