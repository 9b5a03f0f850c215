package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// RestaurantRepo encapsulates all database queries related to restaurants.
type RestaurantRepo struct {
	db *sql.DB
}

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

const restaurantColumns = "id, name, description, max_guest, owner_id, created_at, updated_at"

// Create inserts a new restaurant and reads back its generated fields.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	const q = "INSERT INTO restaurants (name, description, max_guest, owner_id) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, rest.Name, rest.Description, rest.MaxGuest, rest.OwnerID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rest = *created
	return nil
}

// GetByID returns ErrRestaurantNotFound if no row is found.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

// List returns all restaurants ordered by id.
func (r *RestaurantRepo) List(ctx context.Context) ([]*model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+restaurantColumns+" FROM restaurants ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies p and returns the stored restaurant.
func (r *RestaurantRepo) Update(ctx context.Context, id uint64, p model.RestaurantPatch) (*model.Restaurant, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	var a assignments
	if p.Name != nil {
		a.set("name", *p.Name)
	}
	if p.Description != nil {
		a.set("description", *p.Description)
	}
	if p.MaxGuest != nil {
		a.set("max_guest", *p.MaxGuest)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE restaurants SET "+a.clause()+" WHERE id = ?", append(a.args, id)...); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a restaurant together with its pictures and bookings
// (ON DELETE CASCADE).  It returns ErrRestaurantNotFound when no row matched.
func (r *RestaurantRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM restaurants WHERE id = ?", id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

func scanRestaurant(row interface{ Scan(...any) error }) (*model.Restaurant, error) {
	var (
		rest  model.Restaurant
		desc  sql.NullString
		owner sql.NullInt64
	)
	if err := row.Scan(&rest.ID, &rest.Name, &desc, &rest.MaxGuest, &owner, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
		return nil, err
	}
	rest.Description = nullString(desc)
	if owner.Valid {
		id := uint64(owner.Int64)
		rest.OwnerID = &id
	}
	return &rest, nil
}
