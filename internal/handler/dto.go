package handler

import "github.com/iliyamo/restaurant-booking/internal/model"

// Response shapes.  Models carry no json tags; handlers convert them here.

type bookingResp struct {
	ID           uint64          `json:"id"`
	GuestNumber  int             `json:"guestNumber"`
	OrderDate    model.Date      `json:"orderDate"`
	OrderHour    model.TimeOfDay `json:"orderHour"`
	Allergy      *string         `json:"allergy"`
	RestaurantID uint64          `json:"restaurantId"`
	UserID       uint64          `json:"userId"`
}

func toBooking(b *model.Booking) bookingResp {
	return bookingResp{
		ID:           b.ID,
		GuestNumber:  b.GuestNumber,
		OrderDate:    b.OrderDate,
		OrderHour:    b.OrderHour,
		Allergy:      b.Allergy,
		RestaurantID: b.RestaurantID,
		UserID:       b.UserID,
	}
}

type restaurantResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MaxGuest    int     `json:"maxGuest"`
	OwnerID     *uint64 `json:"ownerId,omitempty"`
}

func toRestaurant(r *model.Restaurant) restaurantResp {
	return restaurantResp{ID: r.ID, Name: r.Name, Description: r.Description, MaxGuest: r.MaxGuest, OwnerID: r.OwnerID}
}

type categoryResp struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

func toCategory(c *model.Category) categoryResp { return categoryResp{ID: c.ID, Title: c.Title} }

type foodResp struct {
	ID          uint64         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Price       int            `json:"price"`
	Categories  []categoryResp `json:"categories"`
}

func toFood(f *model.Food) foodResp {
	cats := make([]categoryResp, 0, len(f.Categories))
	for i := range f.Categories {
		cats = append(cats, toCategory(&f.Categories[i]))
	}
	return foodResp{ID: f.ID, Title: f.Title, Description: f.Description, Price: f.Price, Categories: cats}
}

type pictureResp struct {
	ID           uint64 `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	RestaurantID uint64 `json:"restaurantId"`
}

func toPicture(p *model.Picture) pictureResp {
	return pictureResp{ID: p.ID, Title: p.Title, Slug: p.Slug, RestaurantID: p.RestaurantID}
}

// profileResp is returned by /api/me and /api/edit.
type profileResp struct {
	User        string   `json:"user"`
	APIToken    string   `json:"apiToken"`
	Roles       []string `json:"roles"`
	FirstName   *string  `json:"firstName"`
	LastName    *string  `json:"lastName"`
	GuestNumber *int     `json:"guestNumber"`
	Allergy     *string  `json:"allergy"`
}

func toProfile(u *model.User) profileResp {
	return profileResp{
		User:        u.Email,
		APIToken:    u.APIToken,
		Roles:       u.Roles,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		GuestNumber: u.GuestNumber,
		Allergy:     u.Allergy,
	}
}

// mapSlice converts a list of models with fn.
func mapSlice[M any, R any](in []*M, fn func(*M) R) []R {
	out := make([]R, 0, len(in))
	for _, m := range in {
		out = append(out, fn(m))
	}
	return out
}
