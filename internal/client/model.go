package client

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(apperror.KindNotFound, "client not found")
	ErrAlreadyExists = apperror.New(apperror.KindConflict, "user already has a client profile")
	ErrUserNotFound  = apperror.New(apperror.KindNotFound, "user not found")
	ErrRoleMismatch  = apperror.New(apperror.KindValidation, "user does not have the CLIENT role")
)

// Client is the guest profile that owns reservations.
type Client struct {
	ID        int64
	UserID    int64
	Email     string
	FirstName string
	LastName  string
	Phone     *string
	CreatedAt time.Time
}

type Filter struct {
	Name      string
	Page      int
	PageSize  int
	SortOrder string
}
