package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/restaurant-booking/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,roles,api_token,first_name,last_name,guest_number,allergy,created_at,updated_at"

// NormalizeEmail is the form in which emails are stored and looked up.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create inserts u and fills its ID and timestamps.  The caller supplies the
// password hash and API token.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if len(u.Roles) == 0 {
		u.Roles = []string{model.RoleUser}
	}
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return fmt.Errorf("encode roles: %w", err)
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, roles, api_token, first_name, last_name, guest_number, allergy)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, roles, u.APIToken, u.FirstName, u.LastName, u.GuestNumber, u.Allergy)
	if err != nil {
		if isMySQLError(err, errDupEntry) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email", NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByAPIToken resolves the X-AUTH-TOKEN header.
func (r *UserRepo) GetByAPIToken(ctx context.Context, token string) (*model.User, error) {
	return r.getOne(ctx, "api_token", token)
}

func (r *UserRepo) getOne(ctx context.Context, col string, v any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+col+"=? LIMIT 1", v))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile applies p and returns the stored user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error) {
	if !p.Empty() {
		var a assignments
		if p.FirstName != nil {
			a.set("first_name", *p.FirstName)
		}
		if p.LastName != nil {
			a.set("last_name", *p.LastName)
		}
		if p.GuestNumber != nil {
			a.set("guest_number", *p.GuestNumber)
		}
		if p.Allergy != nil {
			a.set("allergy", *p.Allergy)
		}
		if p.PasswordHash != nil {
			a.set("password_hash", *p.PasswordHash)
		}
		if _, err := r.DB.ExecContext(ctx, "UPDATE users SET "+a.clause()+" WHERE id=?", append(a.args, id)...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u                    model.User
		roles                []byte
		first, last, allergy sql.NullString
		guests               sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &roles, &u.APIToken,
		&first, &last, &guests, &allergy, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &u.Roles); err != nil {
			return nil, fmt.Errorf("decode roles of user %d: %w", u.ID, err)
		}
	}
	u.FirstName = nullString(first)
	u.LastName = nullString(last)
	u.Allergy = nullString(allergy)
	if guests.Valid {
		n := int(guests.Int64)
		u.GuestNumber = &n
	}
	return &u, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
