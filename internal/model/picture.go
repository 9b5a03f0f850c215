package model

import "time"

// Picture references an image of a restaurant by slug.
type Picture struct {
	ID           uint64    // pictures.id
	Title        string    // pictures.title
	Slug         string    // pictures.slug
	RestaurantID uint64    // pictures.restaurant_id
	CreatedAt    time.Time // pictures.created_at
	UpdatedAt    time.Time // pictures.updated_at
}

// PicturePatch holds the optional fields of a picture update.
type PicturePatch struct {
	Title        *string
	Slug         *string
	RestaurantID *uint64
}

func (p PicturePatch) Empty() bool {
	return p.Title == nil && p.Slug == nil && p.RestaurantID == nil
}
