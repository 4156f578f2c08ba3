package domain

import "time"

type Category struct {
	ID        string
	Name      string // 1-30 chars, trimmed, unique
	CreatedAt time.Time
}
