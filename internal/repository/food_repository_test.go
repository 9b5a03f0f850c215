package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

var (
	foodCols = []string{"id", "title", "description", "price", "created_at", "updated_at"}
	linkCols = []string{"food_id", "id", "title", "created_at", "updated_at"}
)

func TestFoodRepo_CreateLinksCategories(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFoodRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO foods")).
		WithArgs("Ratatouille", nil, 1800).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO food_categories (food_id, category_id) VALUES (?, ?),(?, ?)")).
		WithArgs(5, 1, 5, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("FROM foods f WHERE f.id = ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(foodCols).AddRow(5, "Ratatouille", nil, 1800, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE fc.food_id IN (?)")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(linkCols).
			AddRow(5, 1, "Vegan", stamp, stamp).
			AddRow(5, 2, "Mains", stamp, stamp))

	f := &model.Food{Title: "Ratatouille", Price: 1800}
	require.NoError(t, repo.Create(context.Background(), f, []uint64{1, 2, 1}))
	assert.Equal(t, uint64(5), f.ID)
	require.Len(t, f.Categories, 2)
	assert.Equal(t, "Mains", f.Categories[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodRepo_CreateUnknownCategoryRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFoodRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO foods")).WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO food_categories")).
		WillReturnError(&mysql.MySQLError{Number: 1452})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Food{Title: "Soup", Price: 700}, []uint64{42})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodRepo_ListByCategory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFoodRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM categories WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE fc.category_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(foodCols).
			AddRow(5, "Ratatouille", "slow cooked", 1800, stamp, stamp).
			AddRow(6, "Salad", nil, 900, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE fc.food_id IN (?,?)")).
		WithArgs(5, 6).
		WillReturnRows(sqlmock.NewRows(linkCols).
			AddRow(5, 1, "Vegan", stamp, stamp).
			AddRow(6, 1, "Vegan", stamp, stamp))

	foods, err := repo.ListByCategory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "slow cooked", *foods[0].Description)
	assert.Len(t, foods[1].Categories, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodRepo_ListByUnknownCategory(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM categories WHERE id = ?")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	_, err := NewFoodRepo(db).ListByCategory(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestFoodRepo_UpdateReplacesCategories(t *testing.T) {
	db, mock := newMock(t)
	repo := NewFoodRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM foods WHERE id = ? FOR UPDATE")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE foods SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?")).
		WithArgs(2000, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM food_categories WHERE food_id = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	price := 2000
	require.NoError(t, repo.Update(context.Background(), 5, model.FoodPatch{Price: &price, CategoryIDs: []uint64{}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
