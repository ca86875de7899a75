package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nekogravitycat/hotel-management-backend/internal/db"
	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/event"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/clock"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
)

// Reservations is the part of reservation.Service the engine drives.
type Reservations interface {
	GetByID(ctx context.Context, id int64) (*reservation.Reservation, error)
	GetForUpdate(ctx context.Context, id int64) (*reservation.Reservation, error)
	AutoConfirm(ctx context.Context, id int64) (bool, error)
}

// EmployeeDirectory is satisfied by employee.Service.
type EmployeeDirectory interface {
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
}

type RecordRequest struct {
	ReservationID  int64
	Amount         money.Amount
	Method         Method
	ReceivedBy     *int64 // employee id
	TransactionRef *string
}

type UpdateRequest struct {
	Amount         *money.Amount
	Method         *Method
	TransactionRef *string
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) (*Payment, error)
	GetByID(ctx context.Context, id int64) (*Payment, error)
	ListByReservation(ctx context.Context, reservationID int64) ([]*Payment, error)
	List(ctx context.Context, filter Filter) ([]*Payment, int, error)
	// Update edits a PENDING or FAILED payment.
	Update(ctx context.Context, id int64, req UpdateRequest) (*Payment, error)
	// UpdateStatus applies an external settlement signal. A nil transactionRef
	// keeps the stored reference.
	UpdateStatus(ctx context.Context, id int64, status Status, transactionRef *string) (*Payment, error)
	// Delete removes a PENDING or FAILED payment.
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, reservationID int64) (*Summary, error)
}

type service struct {
	repo         Repository
	tx           db.TxManager
	reservations Reservations
	employees    EmployeeDirectory
	events       event.Publisher
	clock        clock.Clock
}

func NewService(
	repo Repository,
	tx db.TxManager,
	reservations Reservations,
	employees EmployeeDirectory,
	events event.Publisher,
	clk clock.Clock,
) Service {
	return &service{
		repo:         repo,
		tx:           tx,
		reservations: reservations,
		employees:    employees,
		events:       events,
		clock:        clk,
	}
}

func mapReservationError(err error) error {
	if errors.Is(err, reservation.ErrNotFound) {
		return ErrReservationNotFound
	}
	return err
}

// settled sums SUCCESS payments, skipping excludeID.
func settled(lines []reservation.PaymentLine, excludeID int64) money.Amount {
	var total money.Amount
	for _, p := range lines {
		if p.ID != excludeID && p.Status == string(StatusSuccess) {
			total += p.Amount
		}
	}
	return total
}

// checkBalance rejects an amount larger than what is left on the invoice.
// Without an invoice there is no ceiling.
func checkBalance(res *reservation.Reservation, amount money.Amount, excludeID int64) error {
	if res.Invoice == nil {
		return nil
	}
	remaining := res.Invoice.Total - settled(res.Payments, excludeID)
	if amount > remaining {
		return apperror.WithDetails(ErrOverpayment, map[string]any{
			"reservation_id": res.ID,
			"amount":         amount,
			"remaining":      remaining,
		})
	}
	return nil
}

// reconcile promotes the reservation once settled payments cover the invoice.
// It runs inside the caller's atomic unit, after the payment write.
func (s *service) reconcile(ctx context.Context, reservationID int64) (bool, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return false, err
	}
	if res.Invoice == nil || res.Status != reservation.StatusPending {
		return false, nil
	}
	if settled(res.Payments, 0) < res.Invoice.Total {
		return false, nil
	}
	return s.reservations.AutoConfirm(ctx, reservationID)
}

func (s *service) Record(ctx context.Context, req RecordRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	if req.ReceivedBy != nil {
		if _, err := s.employees.GetByID(ctx, *req.ReceivedBy); err != nil {
			if errors.Is(err, employee.ErrNotFound) {
				return nil, ErrEmployeeNotFound
			}
			return nil, err
		}
	}

	var p *Payment
	var confirmed bool
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetForUpdate(ctx, req.ReservationID)
		if err != nil {
			return mapReservationError(err)
		}
		if res.Status == reservation.StatusCancelled {
			return ErrReservationCancelled
		}
		if err := checkBalance(res, req.Amount, 0); err != nil {
			return err
		}

		now := s.clock.Now()
		p = &Payment{
			ReservationID:  req.ReservationID,
			Amount:         req.Amount,
			Method:         req.Method,
			Status:         req.Method.InitialStatus(),
			ReceivedBy:     req.ReceivedBy,
			TransactionRef: req.TransactionRef,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		if p.Status == StatusSuccess {
			confirmed, err = s.reconcile(ctx, req.ReservationID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment recorded",
		"payment_id", p.ID,
		"reservation_id", p.ReservationID,
		"method", p.Method,
		"status", p.Status,
	)
	event.PublishAfterCommit(ctx, s.events, event.New(event.PaymentRecorded, p.ReservationID, map[string]any{
		"payment_id": p.ID,
		"amount":     p.Amount,
		"method":     p.Method,
		"status":     p.Status,
	}))
	s.publishAutoConfirm(ctx, confirmed, p.ReservationID)

	return p, nil
}

func (s *service) publishAutoConfirm(ctx context.Context, confirmed bool, reservationID int64) {
	if !confirmed {
		return
	}
	event.PublishAfterCommit(ctx, s.events, event.New(event.ReservationConfirmed, reservationID, map[string]any{
		"auto": true,
	}))
}

// lockPayment loads the payment, locks its reservation, and reloads the
// payment under that lock.
func (s *service) lockPayment(ctx context.Context, id int64) (*Payment, *reservation.Reservation, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.reservations.GetForUpdate(ctx, p.ReservationID)
	if err != nil {
		return nil, nil, mapReservationError(err)
	}
	p, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status Status, transactionRef *string) (*Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var p *Payment
	var from Status
	var confirmed bool
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		var res *reservation.Reservation
		var err error
		p, res, err = s.lockPayment(ctx, id)
		if err != nil {
			return err
		}

		from = p.Status
		if !from.CanTransitionTo(status) {
			return apperror.WithDetails(ErrInvalidTransition, map[string]any{
				"payment_id": p.ID,
				"from":       from,
				"to":         status,
			})
		}
		if status == StatusSuccess {
			if err := checkBalance(res, p.Amount, p.ID); err != nil {
				return err
			}
		}

		p.Status = status
		if transactionRef != nil {
			p.TransactionRef = transactionRef
		}
		p.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}

		if status == StatusSuccess {
			confirmed, err = s.reconcile(ctx, p.ReservationID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment status changed",
		"payment_id", p.ID,
		"reservation_id", p.ReservationID,
		"from", from,
		"to", p.Status,
	)
	event.PublishAfterCommit(ctx, s.events, event.New(event.PaymentStatusChanged, p.ReservationID, map[string]any{
		"payment_id": p.ID,
		"from":       from,
		"to":         p.Status,
	}))
	s.publishAutoConfirm(ctx, confirmed, p.ReservationID)

	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Payment, error) {
	var p *Payment
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		var res *reservation.Reservation
		var err error
		p, res, err = s.lockPayment(ctx, id)
		if err != nil {
			return err
		}
		if !p.Status.Editable() {
			return ErrImmutable
		}

		if req.Amount != nil {
			p.Amount = *req.Amount
		}
		if req.Method != nil {
			p.Method = *req.Method
		}
		if req.TransactionRef != nil {
			p.TransactionRef = req.TransactionRef
		}
		if p.Amount <= 0 {
			return ErrInvalidAmount
		}
		if !p.Method.Valid() {
			return ErrInvalidMethod
		}
		if err := checkBalance(res, p.Amount, p.ID); err != nil {
			return err
		}

		p.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		p, _, err := s.lockPayment(ctx, id)
		if err != nil {
			return err
		}
		if !p.Status.Editable() {
			return ErrImmutable
		}
		return s.repo.Delete(ctx, id)
	})
}

func (s *service) GetByID(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByReservation(ctx context.Context, reservationID int64) ([]*Payment, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return nil, mapReservationError(err)
	}
	return s.repo.ListByReservation(ctx, reservationID)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Payment, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if filter.Method != "" && !filter.Method.Valid() {
		return nil, 0, ErrInvalidMethod
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Summary(ctx context.Context, reservationID int64) (*Summary, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, mapReservationError(err)
	}

	sum := &Summary{ReservationID: reservationID}
	if res.Invoice != nil {
		sum.InvoiceTotal = res.Invoice.Total
	}
	for _, p := range res.Payments {
		switch Status(p.Status) {
		case StatusSuccess:
			sum.TotalPaid += p.Amount
		case StatusPending:
			sum.TotalPending += p.Amount
		}
	}
	// Without an invoice nothing is owed yet.
	sum.Remaining = max(sum.InvoiceTotal-sum.TotalPaid, 0)
	sum.IsFullyPaid = sum.Remaining <= 0 && sum.InvoiceTotal > 0
	return sum, nil
}
