package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

// PictureRepo stores picture references.  Every picture belongs to a
// restaurant; writes naming a missing restaurant fail with
// ErrRestaurantNotFound.
type PictureRepo struct {
	db *sql.DB
}

func NewPictureRepo(db *sql.DB) *PictureRepo { return &PictureRepo{db: db} }

const pictureColumns = "id, title, slug, restaurant_id, created_at, updated_at"

func (r *PictureRepo) Create(ctx context.Context, p *model.Picture) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO pictures (title, slug, restaurant_id) VALUES (?, ?, ?)", p.Title, p.Slug, p.RestaurantID)
	if err != nil {
		return restaurantRef(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *PictureRepo) GetByID(ctx context.Context, id uint64) (*model.Picture, error) {
	var p model.Picture
	err := r.db.QueryRowContext(ctx, "SELECT "+pictureColumns+" FROM pictures WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &p.Slug, &p.RestaurantID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPictureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PictureRepo) List(ctx context.Context) ([]*model.Picture, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+pictureColumns+" FROM pictures ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Picture{}
	for rows.Next() {
		p := new(model.Picture)
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.RestaurantID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PictureRepo) Update(ctx context.Context, id uint64, p model.PicturePatch) (*model.Picture, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !p.Empty() {
		var a assignments
		if p.Title != nil {
			a.set("title", *p.Title)
		}
		if p.Slug != nil {
			a.set("slug", *p.Slug)
		}
		if p.RestaurantID != nil {
			a.set("restaurant_id", *p.RestaurantID)
		}
		if _, err := r.db.ExecContext(ctx, "UPDATE pictures SET "+a.clause()+" WHERE id = ?", append(a.args, id)...); err != nil {
			return nil, restaurantRef(err)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *PictureRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM pictures WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPictureNotFound
	}
	return nil
}

// restaurantRef reports a dangling restaurant_id as ErrRestaurantNotFound.
func restaurantRef(err error) error {
	if err = translate(err); errors.Is(err, ErrReferenceNotFound) {
		return ErrRestaurantNotFound
	}
	return err
}
