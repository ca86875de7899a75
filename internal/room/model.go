package room

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, "room not found")
	ErrNumberRequired     = apperror.New(apperror.KindValidation, "room number is required")
	ErrInvalidFloor       = apperror.New(apperror.KindValidation, "floor must be 0 or higher")
	ErrInvalidPrice       = apperror.New(apperror.KindInvalidAmount, "price must be positive")
	ErrInvalidStatus      = apperror.New(apperror.KindValidation, "status must be AVAILABLE or OUT_OF_SERVICE")
	ErrInvalidRoomType    = apperror.New(apperror.KindValidation, "invalid room type")
	ErrNumberTaken        = apperror.New(apperror.KindConflict, "room number already exists on this floor")
	ErrActiveReservations = apperror.New(apperror.KindInvalidState, "cannot delete room with active or upcoming reservations")
	ErrHasHistory         = apperror.New(apperror.KindInvalidState, "cannot delete room referenced by past reservations")
	ErrInvalidRange       = apperror.New(apperror.KindValidation, "end must be after start")
)

type Status string

const (
	StatusAvailable    Status = "AVAILABLE"
	StatusOutOfService Status = "OUT_OF_SERVICE"
)

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusOutOfService
}

// Room is a bookable unit with a nightly price.
type Room struct {
	ID           int64
	Number       string
	Floor        int
	Price        money.Amount // per night
	Status       Status
	RoomTypeID   int64
	RoomTypeName string
	CreatedAt    time.Time
}

// Filter defines parameters for listing rooms.
type Filter struct {
	Status     Status
	RoomTypeID int64
	Floor      *int
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// AvailableFilter narrows the available-room listing. When both Start and End
// are set, rooms with a non-cancelled reservation overlapping the range are excluded.
type AvailableFilter struct {
	Start      *time.Time
	End        *time.Time
	RoomTypeID int64
}
