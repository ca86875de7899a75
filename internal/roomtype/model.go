package roomtype

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(apperror.KindNotFound, "room type not found")
	ErrInvalidName   = apperror.New(apperror.KindValidation, "room type name must be SINGLE, DOUBLE or SUITE")
	ErrAlreadyExists = apperror.New(apperror.KindConflict, "room type already exists")
	ErrInUse         = apperror.New(apperror.KindInvalidState, "room type is still referenced by rooms")
)

type Name string

const (
	NameSingle Name = "SINGLE"
	NameDouble Name = "DOUBLE"
	NameSuite  Name = "SUITE"
)

func (n Name) Valid() bool {
	switch n {
	case NameSingle, NameDouble, NameSuite:
		return true
	}
	return false
}

type RoomType struct {
	ID          int64
	Name        Name
	Description string
	CreatedAt   time.Time
}

type Filter struct {
	Page      int
	PageSize  int
	SortOrder string
}
