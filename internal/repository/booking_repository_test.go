package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

var (
	bookingCols    = []string{"id", "guest_number", "order_date", "order_hour", "allergy", "restaurant_id", "user_id", "created_at", "updated_at"}
	restaurantCols = []string{"id", "name", "description", "max_guest", "owner_id", "created_at", "updated_at"}
	stamp          = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	visitDay       = model.Date{Year: 2025, Month: time.October, Day: 15}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func bookingRow(rows *sqlmock.Rows, id uint64, guests int, hour string) *sqlmock.Rows {
	return rows.AddRow(id, guests, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), []byte(hour), nil, 1, 2, stamp, stamp)
}

func TestBookingRepo_ListByRestaurantAndDate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	rows := sqlmock.NewRows(bookingCols)
	bookingRow(rows, 1, 20, "17:30:00")
	bookingRow(rows, 2, 10, "19:00:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE restaurant_id = ? AND order_date = ?")).
		WithArgs(1, "2025-10-15").
		WillReturnRows(rows)

	got, err := repo.ListByRestaurantAndDate(context.Background(), 1, visitDay)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Clock(17, 30, 0), got[0].OrderHour)
	assert.Equal(t, visitDay, got[1].OrderDate)
	assert.Equal(t, 10, got[1].GuestNumber)
	assert.Nil(t, got[1].Allergy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateReadsBackRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	allergy := "peanuts"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(4, "2025-10-15", "19:00:00", "peanuts", 1, 2).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(9, 4, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), []byte("19:00:00"), "peanuts", 1, 2, stamp, stamp))

	b := &model.Booking{GuestNumber: 4, OrderDate: visitDay, OrderHour: model.Clock(19, 0, 0), Allergy: &allergy, RestaurantID: 1, UserID: 2}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, uint64(9), b.ID)
	assert.Equal(t, stamp, b.CreatedAt)
	require.NotNil(t, b.Allergy)
	assert.Equal(t, "peanuts", *b.Allergy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateMissingParent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err := repo.Create(context.Background(), &model.Booking{GuestNumber: 1, OrderDate: visitDay, RestaurantID: 99, UserID: 2})
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestBookingRepo_CreateIfAdmitted_LocksRestaurantAndInserts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	existing := sqlmock.NewRows(bookingCols)
	bookingRow(existing, 1, 10, "19:00:00")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM restaurants WHERE id = ? FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(restaurantCols).AddRow(1, "Chez Nous", nil, 50, nil, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE restaurant_id = ? AND order_date = ?")).
		WithArgs(1, "2025-10-15").
		WillReturnRows(existing)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(40, "2025-10-15", "19:00:00", nil, 1, 2).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(11).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 11, 40, "19:00:00"))
	mock.ExpectCommit()

	var seenMax, seenExisting int
	b := &model.Booking{GuestNumber: 40, OrderDate: visitDay, OrderHour: model.Clock(19, 0, 0), RestaurantID: 1, UserID: 2}
	ok, err := repo.CreateIfAdmitted(context.Background(), b, func(rest *model.Restaurant, bookings []model.Booking) bool {
		seenMax, seenExisting = rest.MaxGuest, len(bookings)
		return true
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(11), b.ID)
	assert.Equal(t, 50, seenMax)
	assert.Equal(t, 1, seenExisting)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateIfAdmitted_RejectedRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(restaurantCols).AddRow(1, "Chez Nous", nil, 50, nil, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE restaurant_id = ?")).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	ok, err := repo.CreateIfAdmitted(context.Background(), &model.Booking{GuestNumber: 51, OrderDate: visitDay, RestaurantID: 1},
		func(*model.Restaurant, []model.Booking) bool { return false })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateIfAdmitted_UnknownRestaurant(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(sqlmock.NewRows(restaurantCols))
	mock.ExpectRollback()

	_, err := repo.CreateIfAdmitted(context.Background(), &model.Booking{RestaurantID: 404, OrderDate: visitDay},
		func(*model.Restaurant, []model.Booking) bool { return true })
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).WithArgs(5).WillReturnRows(sqlmock.NewRows(bookingCols))

	_, err := NewBookingRepo(db).GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingRepo_UpdateOnlyTouchesSetFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(3).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 3, 4, "19:00:00"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET guest_number = ?, order_hour = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?")).
		WithArgs(8, "20:30:00", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ?")).
		WithArgs(3).
		WillReturnRows(bookingRow(sqlmock.NewRows(bookingCols), 3, 8, "20:30:00"))

	guests, hour := 8, model.Clock(20, 30, 0)
	b, err := repo.Update(context.Background(), 3, model.BookingPatch{GuestNumber: &guests, OrderHour: &hour})
	require.NoError(t, err)
	assert.Equal(t, 8, b.GuestNumber)
	assert.Equal(t, hour, b.OrderHour)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = ?")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = ?")).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrBookingNotFound)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1451}), ErrConflict)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1452}), ErrReferenceNotFound)

	other := errors.New("bad connection")
	assert.Equal(t, other, translate(other))
}
