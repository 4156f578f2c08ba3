package domain

import "time"

type Sweet struct {
	ID        string
	Name      string
	Category  Category // always expanded on read
	Price     float64
	Quantity  int // never negative
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
