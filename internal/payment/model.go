package payment

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
)

var (
	ErrNotFound             = apperror.New(apperror.KindNotFound, "payment not found")
	ErrReservationNotFound  = apperror.New(apperror.KindNotFound, "reservation not found")
	ErrEmployeeNotFound     = apperror.New(apperror.KindNotFound, "employee not found")
	ErrInvalidAmount        = apperror.New(apperror.KindInvalidAmount, "amount must be positive")
	ErrInvalidMethod        = apperror.New(apperror.KindValidation, "method must be CASH, CARD, BANK_TRANSFER or ONLINE")
	ErrInvalidStatus        = apperror.New(apperror.KindValidation, "invalid payment status")
	ErrOverpayment          = apperror.New(apperror.KindOverpayment, "amount exceeds the remaining balance")
	ErrReservationCancelled = apperror.New(apperror.KindInvalidState, "cannot record a payment on a cancelled reservation")
	ErrInvalidTransition    = apperror.New(apperror.KindInvalidTransition, "payment cannot make this status transition")
	ErrImmutable            = apperror.New(apperror.KindInvalidState, "settled or refunded payments cannot be changed")
)

type Method string

const (
	MethodCash         Method = "CASH"
	MethodCard         Method = "CARD"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodOnline       Method = "ONLINE"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodOnline:
		return true
	}
	return false
}

// InitialStatus is SUCCESS for in-person methods and PENDING for methods
// settled by an external confirmation.
func (m Method) InitialStatus() Status {
	if m == MethodCash || m == MethodCard {
		return StatusSuccess
	}
	return StatusPending
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo allows PENDING to SUCCESS, FAILED or REFUNDED and
// SUCCESS to REFUNDED. Nothing ever returns to PENDING.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusSuccess || next == StatusFailed || next == StatusRefunded
	case StatusSuccess:
		return next == StatusRefunded
	}
	return false
}

// Editable reports whether the payment record may still be changed or removed.
func (s Status) Editable() bool {
	return s == StatusPending || s == StatusFailed
}

type Payment struct {
	ID             int64
	ReservationID  int64
	Amount         money.Amount
	Method         Method
	Status         Status
	ReceivedBy     *int64 // employee id
	TransactionRef *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary is the balance of a reservation against its invoice.
type Summary struct {
	ReservationID int64
	InvoiceTotal  money.Amount
	TotalPaid     money.Amount // SUCCESS only
	TotalPending  money.Amount
	Remaining     money.Amount
	IsFullyPaid   bool
}

type Filter struct {
	ReservationID int64
	Status        Status
	Method        Method
	Page          int
	PageSize      int
	SortOrder     string
}
