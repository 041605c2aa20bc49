package entity

import "time"

// Client cliente de la tienda. CPF es opcional pero único si está presente.
type Client struct {
	ID        string
	Name      string
	CPF       string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
