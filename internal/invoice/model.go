package invoice

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
)

var (
	ErrNotFound             = apperror.New(apperror.KindNotFound, "invoice not found")
	ErrReservationNotFound  = apperror.New(apperror.KindNotFound, "reservation not found")
	ErrAlreadyExists        = apperror.New(apperror.KindConflict, "reservation already has an invoice")
	ErrNotBillable          = apperror.New(apperror.KindInvalidState, "invoices are issued for confirmed or completed reservations")
	ErrNotPending           = apperror.New(apperror.KindInvalidState, "proforma invoices are issued for pending reservations")
	ErrInvalidAmount        = apperror.New(apperror.KindInvalidAmount, "invoice total must be positive")
	ErrSettledExceedsTotal  = apperror.New(apperror.KindOverpayment, "settled payments exceed the invoice total")
	ErrHasPayments          = apperror.New(apperror.KindInvalidState, "cannot delete an invoice with recorded payments")
	ErrReservationCompleted = apperror.New(apperror.KindInvalidState, "cannot delete the invoice of a completed reservation")
)

type Invoice struct {
	ID            int64
	ReservationID int64
	Total         money.Amount
	CreatedAt     time.Time
}

type Filter struct {
	ReservationID int64
	Page          int
	PageSize      int
	SortOrder     string
}
