package model

import "time"

// Category groups foods on a menu.
type Category struct {
	ID        uint64    // categories.id
	Title     string    // categories.title
	CreatedAt time.Time // categories.created_at
	UpdatedAt time.Time // categories.updated_at
}
