package model

import "time"

// RoleUser is granted to every account at registration.
const RoleUser = "ROLE_USER"

// User represents an application user record as stored in the
// `users` table.  The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Roles        – granted roles, stored as a JSON array; always holds ROLE_USER.
//	APIToken     – opaque 40-hex token accepted in the X-AUTH-TOKEN header.
//	FirstName    – optional first name.
//	LastName     – optional last name.
//	GuestNumber  – optional default party size.
//	Allergy      – optional free-text allergy note.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Roles        []string  // users.roles (JSON)
	APIToken     string    // users.api_token
	FirstName    *string   // users.first_name (nullable)
	LastName     *string   // users.last_name (nullable)
	GuestNumber  *int      // users.guest_number (nullable)
	Allergy      *string   // users.allergy (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserPatch carries the profile fields a user may edit.  Nil fields are left
// untouched.  PasswordHash is filled by the handler after hashing.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	GuestNumber  *int
	Allergy      *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.GuestNumber == nil &&
		p.Allergy == nil && p.PasswordHash == nil
}
