package model

import "time"

// Food is a menu item.  Categories are loaded from the `food_categories`
// join table and are nil when the caller did not ask for them.
type Food struct {
	ID          uint64     // foods.id
	Title       string     // foods.title
	Description *string    // foods.description (nullable)
	Price       int        // foods.price
	Categories  []Category // food_categories
	CreatedAt   time.Time  // foods.created_at
	UpdatedAt   time.Time  // foods.updated_at
}

// FoodPatch holds the optional fields of a food update.  A non-nil
// CategoryIDs replaces the whole category set, an empty slice clears it.
type FoodPatch struct {
	Title       *string
	Description *string
	Price       *int
	CategoryIDs []uint64
}

func (p FoodPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.CategoryIDs == nil
}
