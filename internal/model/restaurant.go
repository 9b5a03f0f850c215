package model

import "time"

// Restaurant is a row in the `restaurants` table.  MaxGuest is the
// ceiling on the number of guests seated within any single two-hour
// service window.
type Restaurant struct {
	ID          uint64    // restaurants.id
	Name        string    // restaurants.name
	Description *string   // restaurants.description (nullable)
	MaxGuest    int       // restaurants.max_guest
	OwnerID     *uint64   // restaurants.owner_id (nullable)
	CreatedAt   time.Time // restaurants.created_at
	UpdatedAt   time.Time // restaurants.updated_at
}

// RestaurantPatch holds the optional fields of a restaurant update.
type RestaurantPatch struct {
	Name        *string
	Description *string
	MaxGuest    *int
}

func (p RestaurantPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.MaxGuest == nil
}
