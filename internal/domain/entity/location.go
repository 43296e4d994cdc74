package entity

import "time"

// Location es una ubicación física de stock (tienda o bodega) de una empresa.
type Location struct {
	ID         string
	BusinessID string
	Name       string
	Address    string
	IsActive   bool
	CreatedAt  time.Time
}
