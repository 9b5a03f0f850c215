package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// FoodRepo stores menu items and their category links.  Links live in the
// food_categories join table and are always rewritten as a whole.
type FoodRepo struct {
	db *sql.DB
}

func NewFoodRepo(db *sql.DB) *FoodRepo { return &FoodRepo{db: db} }

const foodColumns = "f.id, f.title, f.description, f.price, f.created_at, f.updated_at"

// Create inserts f and links it to categoryIDs in one transaction.  An
// unknown category aborts the insert with ErrCategoryNotFound.
func (r *FoodRepo) Create(ctx context.Context, f *model.Food, categoryIDs []uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO foods (title, description, price) VALUES (?, ?, ?)", f.Title, f.Description, f.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err = linkCategoriesTx(ctx, tx, uint64(id), categoryIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*f = *created
	return nil
}

// GetByID loads a food with its categories.
func (r *FoodRepo) GetByID(ctx context.Context, id uint64) (*model.Food, error) {
	f, err := scanFood(r.db.QueryRowContext(ctx, "SELECT "+foodColumns+" FROM foods f WHERE f.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFoodNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, []*model.Food{f}); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns every food ordered by id.
func (r *FoodRepo) List(ctx context.Context) ([]*model.Food, error) {
	return r.query(ctx, "SELECT "+foodColumns+" FROM foods f ORDER BY f.id")
}

// ListByCategory returns the foods linked to a category.  It fails with
// ErrCategoryNotFound when the category itself does not exist.
func (r *FoodRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]*model.Food, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE id = ?", categoryID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.query(ctx, `SELECT `+foodColumns+`
	           FROM foods f
	           JOIN food_categories fc ON fc.food_id = f.id
	           WHERE fc.category_id = ?
	           ORDER BY f.id`, categoryID)
}

// Update applies p.  A non-nil p.CategoryIDs replaces the category set.
func (r *FoodRepo) Update(ctx context.Context, id uint64, p model.FoodPatch) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, "SELECT 1 FROM foods WHERE id = ? FOR UPDATE", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrFoodNotFound
		}
		return err
	}

	var a assignments
	if p.Title != nil {
		a.set("title", *p.Title)
	}
	if p.Description != nil {
		a.set("description", *p.Description)
	}
	if p.Price != nil {
		a.set("price", *p.Price)
	}
	if !a.empty() || p.CategoryIDs != nil {
		if _, err = tx.ExecContext(ctx, "UPDATE foods SET "+a.clause()+" WHERE id = ?", append(a.args, id)...); err != nil {
			return err
		}
	}
	if p.CategoryIDs != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM food_categories WHERE food_id = ?", id); err != nil {
			return err
		}
		if err = linkCategoriesTx(ctx, tx, id, p.CategoryIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *FoodRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM foods WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (r *FoodRepo) query(ctx context.Context, q string, args ...any) ([]*model.Food, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Food{}
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadCategories fills Categories on every food with a single query.
func (r *FoodRepo) loadCategories(ctx context.Context, foods []*model.Food) error {
	if len(foods) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Food, len(foods))
	args := make([]any, 0, len(foods))
	for _, f := range foods {
		f.Categories = []model.Category{}
		byID[f.ID] = f
		args = append(args, f.ID)
	}
	q := `SELECT fc.food_id, c.id, c.title, c.created_at, c.updated_at
	      FROM food_categories fc
	      JOIN categories c ON c.id = fc.category_id
	      WHERE fc.food_id IN (` + placeholders(len(args)) + `)
	      ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			foodID uint64
			c      model.Category
		)
		if err := rows.Scan(&foodID, &c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		if f, ok := byID[foodID]; ok {
			f.Categories = append(f.Categories, c)
		}
	}
	return rows.Err()
}

// linkCategoriesTx inserts the join rows in a single statement.  Passing an
// empty slice has no effect.
func linkCategoriesTx(ctx context.Context, tx *sql.Tx, foodID uint64, categoryIDs []uint64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	seen := make(map[uint64]bool, len(categoryIDs))
	values := make([]string, 0, len(categoryIDs))
	args := make([]any, 0, len(categoryIDs)*2)
	for _, cid := range categoryIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		values = append(values, "(?, ?)")
		args = append(args, foodID, cid)
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO food_categories (food_id, category_id) VALUES "+strings.Join(values, ","), args...)
	if err = translate(err); errors.Is(err, ErrReferenceNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func scanFood(row interface{ Scan(...any) error }) (*model.Food, error) {
	var (
		f    model.Food
		desc sql.NullString
	)
	if err := row.Scan(&f.ID, &f.Title, &desc, &f.Price, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Description = nullString(desc)
	return &f, nil
}
