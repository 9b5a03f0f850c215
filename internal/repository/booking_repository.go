package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  OrderDate and
// OrderHour are stored as naive DATE and TIME columns.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, guest_number, order_date, order_hour, allergy, restaurant_id, user_id, created_at, updated_at"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListByRestaurantAndDate returns every booking of a restaurant on date.
// It is the snapshot the availability check works on.
func (r *BookingRepo) ListByRestaurantAndDate(ctx context.Context, restaurantID uint64, date model.Date) ([]model.Booking, error) {
	return listByRestaurantAndDate(ctx, r.db, restaurantID, date)
}

func listByRestaurantAndDate(ctx context.Context, q querier, restaurantID uint64, date model.Date) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE restaurant_id = ? AND order_date = ? ORDER BY order_hour, id",
		restaurantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Create inserts b and reads back the stored row.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	return createBooking(ctx, r.db, b)
}

// CreateIfAdmitted runs the capacity decision and the insert in one
// transaction.  The restaurant row is locked with SELECT ... FOR UPDATE
// first, so concurrent calls for the same restaurant are serialized and
// admit sees a snapshot no other writer can change before the insert.
// When admit returns false nothing is written and (false, nil) is returned.
func (r *BookingRepo) CreateIfAdmitted(ctx context.Context, b *model.Booking,
	admit func(rest *model.Restaurant, existing []model.Booking) bool) (ok bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !ok {
			_ = tx.Rollback()
		}
	}()

	rest, err := scanRestaurant(tx.QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants WHERE id = ? FOR UPDATE", b.RestaurantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRestaurantNotFound
		}
		return false, err
	}
	existing, err := listByRestaurantAndDate(ctx, tx, b.RestaurantID, b.OrderDate)
	if err != nil {
		return false, err
	}
	if !admit(rest, existing) {
		return false, nil
	}
	if err = createBooking(ctx, tx, b); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit booking: %w", err)
	}
	return true, nil
}

func createBooking(ctx context.Context, q querier, b *model.Booking) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO bookings (guest_number, order_date, order_hour, allergy, restaurant_id, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.GuestNumber, b.OrderDate, b.OrderHour, b.Allergy, b.RestaurantID, b.UserID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanBooking(q.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id))
	if err != nil {
		return err
	}
	*b = *created
	return nil
}

// GetByID returns ErrBookingNotFound if no row is found.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// List returns every booking ordered by id.
func (r *BookingRepo) List(ctx context.Context) ([]*model.Booking, error) {
	return r.query(ctx, "SELECT "+bookingColumns+" FROM bookings ORDER BY id")
}

// ListByRestaurant returns all bookings of one restaurant, soonest first.
func (r *BookingRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*model.Booking, error) {
	return r.query(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE restaurant_id = ? ORDER BY order_date, order_hour, id",
		restaurantID)
}

// Update applies p without any capacity check and returns the stored row.
func (r *BookingRepo) Update(ctx context.Context, id uint64, p model.BookingPatch) (*model.Booking, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !p.Empty() {
		var a assignments
		if p.GuestNumber != nil {
			a.set("guest_number", *p.GuestNumber)
		}
		if p.OrderDate != nil {
			a.set("order_date", *p.OrderDate)
		}
		if p.OrderHour != nil {
			a.set("order_hour", *p.OrderHour)
		}
		if p.Allergy != nil {
			a.set("allergy", *p.Allergy)
		}
		if _, err := r.db.ExecContext(ctx, "UPDATE bookings SET "+a.clause()+" WHERE id = ?", append(a.args, id)...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete returns ErrBookingNotFound when no row matched.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var (
		b       model.Booking
		allergy sql.NullString
	)
	if err := row.Scan(&b.ID, &b.GuestNumber, &b.OrderDate, &b.OrderHour, &allergy,
		&b.RestaurantID, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Allergy = nullString(allergy)
	return &b, nil
}
