package user

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(apperror.KindConflict, "email already used")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(apperror.KindUnauthorized, "user is inactive")
	ErrEmailRequired      = apperror.New(apperror.KindValidation, "email is required")
	ErrNameRequired       = apperror.New(apperror.KindValidation, "first and last name are required")
	ErrPasswordTooShort   = apperror.New(apperror.KindValidation, "password must be at least 8 characters")
	ErrInvalidRole        = apperror.New(apperror.KindValidation, "invalid role")
)

// User represents a user in the system.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         auth.Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email    string
	Name     string
	Role     auth.Role
	IsActive *bool // Use pointer to distinguish between false and nil (not set)

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
