package reservation

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
)

var (
	ErrNotFound          = apperror.New(apperror.KindNotFound, "reservation not found")
	ErrClientNotFound    = apperror.New(apperror.KindNotFound, "client not found")
	ErrEmployeeNotFound  = apperror.New(apperror.KindNotFound, "employee not found")
	ErrRoomNotFound      = apperror.New(apperror.KindNotFound, "room not found")
	ErrNoRooms           = apperror.New(apperror.KindValidation, "at least one room is required")
	ErrInvalidRange      = apperror.New(apperror.KindValidation, "date_end must be after date_start")
	ErrRoomsUnavailable  = apperror.New(apperror.KindConflict, "rooms are not available for the requested dates")
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "reservation cannot make this transition")
	ErrNotPending        = apperror.New(apperror.KindInvalidState, "only pending reservations can be cancelled or deleted")
	ErrHasPayments       = apperror.New(apperror.KindInvalidState, "reservation has recorded payments")
	ErrInvalidStatus     = apperror.New(apperror.KindValidation, "invalid reservation status")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// RoomLink is one reservation_rooms row joined with the room it points at.
type RoomLink struct {
	ID     int64
	RoomID int64
	Number string
	Floor  int
	Price  money.Amount
}

// PaymentLine is the slice of a payment the lifecycle rules need.
type PaymentLine struct {
	ID     int64
	Amount money.Amount
	Method string
	Status string
}

// InvoiceLine is the reservation's invoice, if one was issued.
type InvoiceLine struct {
	ID        int64
	Total     money.Amount
	CreatedAt time.Time
}

// Reservation is the hydrated aggregate. Rooms is always loaded; Payments and
// Invoice are loaded by GetByID only.
type Reservation struct {
	ID          int64
	ClientID    int64
	Start       time.Time
	End         time.Time
	Status      Status
	ValidatedBy *int64 // employee id
	CreatedAt   time.Time

	Rooms    []RoomLink
	Payments []PaymentLine
	Invoice  *InvoiceLine
}

func (r *Reservation) RoomIDs() []int64 {
	ids := make([]int64, len(r.Rooms))
	for i, l := range r.Rooms {
		ids[i] = l.RoomID
	}
	return ids
}

func (r *Reservation) Nights() int64 {
	return NightCount(r.Start, r.End)
}

// NightCount is the number of started 24h periods between start and end.
func NightCount(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	day := 24 * time.Hour
	n := int64(d / day)
	if d%day != 0 {
		n++
	}
	return n
}

// Conflict names an existing booking that overlaps a requested range.
type Conflict struct {
	RoomID        int64     `json:"room_id"`
	ReservationID int64     `json:"reservation_id"`
	Start         time.Time `json:"date_start"`
	End           time.Time `json:"date_end"`
}

// Filter defines parameters for listing reservations.
type Filter struct {
	ClientID  int64
	Status    Status
	RoomID    int64
	From      *time.Time // reservations ending at or after From
	To        *time.Time // reservations starting at or before To
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
