package invoice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nekogravitycat/hotel-management-backend/internal/db"
	"github.com/nekogravitycat/hotel-management-backend/internal/event"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
)

type Reservations interface {
	GetByID(ctx context.Context, id int64) (*reservation.Reservation, error)
	GetForUpdate(ctx context.Context, id int64) (*reservation.Reservation, error)
}

// RoomPricer is satisfied by room.Service.
type RoomPricer interface {
	PriceFor(ctx context.Context, id int64) (money.Amount, error)
}

type Service interface {
	// Create issues the invoice of a CONFIRMED or COMPLETED reservation.
	Create(ctx context.Context, reservationID int64) (*Invoice, error)
	// IssueProforma issues the invoice of a PENDING reservation so that
	// prepayment can confirm it.
	IssueProforma(ctx context.Context, reservationID int64) (*Invoice, error)
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	GetByReservation(ctx context.Context, reservationID int64) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]*Invoice, int, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo         Repository
	tx           db.TxManager
	reservations Reservations
	rooms        RoomPricer
	events       event.Publisher
}

func NewService(repo Repository, tx db.TxManager, reservations Reservations, rooms RoomPricer, events event.Publisher) Service {
	return &service{
		repo:         repo,
		tx:           tx,
		reservations: reservations,
		rooms:        rooms,
		events:       events,
	}
}

func mapReservationError(err error) error {
	if errors.Is(err, reservation.ErrNotFound) {
		return ErrReservationNotFound
	}
	return err
}

// computeTotal is the sum over linked rooms of nightly price times night count.
func (s *service) computeTotal(ctx context.Context, res *reservation.Reservation) (money.Amount, error) {
	nights := res.Nights()
	var total money.Amount
	for _, l := range res.Rooms {
		price, err := s.rooms.PriceFor(ctx, l.RoomID)
		if err != nil {
			return 0, err
		}
		total += price.Times(nights)
	}
	if nights <= 0 || total <= 0 {
		return 0, apperror.WithDetails(ErrInvalidAmount, map[string]any{
			"reservation_id": res.ID,
			"nights":         nights,
			"total":          total,
		})
	}
	return total, nil
}

// settled sums the successful payments.
func settled(lines []reservation.PaymentLine) money.Amount {
	var paid money.Amount
	for _, p := range lines {
		if p.Status == string(payment.StatusSuccess) {
			paid += p.Amount
		}
	}
	return paid
}

func (s *service) issue(ctx context.Context, reservationID int64, allowed func(reservation.Status) error) (*Invoice, error) {
	var inv *Invoice
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetForUpdate(ctx, reservationID)
		if err != nil {
			return mapReservationError(err)
		}
		if err := allowed(res.Status); err != nil {
			return err
		}
		if res.Invoice != nil {
			return apperror.WithDetails(ErrAlreadyExists, map[string]any{"invoice_id": res.Invoice.ID})
		}

		total, err := s.computeTotal(ctx, res)
		if err != nil {
			return err
		}
		// Money taken before the invoice existed had no ceiling.
		if paid := settled(res.Payments); paid > total {
			return apperror.WithDetails(ErrSettledExceedsTotal, map[string]any{
				"reservation_id": res.ID,
				"settled":        paid,
				"total":          total,
			})
		}
		inv = &Invoice{ReservationID: reservationID, Total: total}
		return s.repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invoice created",
		"invoice_id", inv.ID,
		"reservation_id", reservationID,
		"total", inv.Total.Format(),
	)
	event.PublishAfterCommit(ctx, s.events, event.New(event.InvoiceCreated, reservationID, map[string]any{
		"invoice_id": inv.ID,
		"total":      inv.Total,
	}))
	return inv, nil
}

func (s *service) Create(ctx context.Context, reservationID int64) (*Invoice, error) {
	return s.issue(ctx, reservationID, func(st reservation.Status) error {
		if st != reservation.StatusConfirmed && st != reservation.StatusCompleted {
			return ErrNotBillable
		}
		return nil
	})
}

func (s *service) IssueProforma(ctx context.Context, reservationID int64) (*Invoice, error) {
	return s.issue(ctx, reservationID, func(st reservation.Status) error {
		if st != reservation.StatusPending {
			return ErrNotPending
		}
		return nil
	})
}

func (s *service) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByReservation(ctx context.Context, reservationID int64) (*Invoice, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return nil, mapReservationError(err)
	}
	return s.repo.GetByReservation(ctx, reservationID)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Invoice, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		res, err := s.reservations.GetForUpdate(ctx, inv.ReservationID)
		if err != nil {
			return mapReservationError(err)
		}
		if len(res.Payments) > 0 {
			return ErrHasPayments
		}
		if res.Status == reservation.StatusCompleted {
			return ErrReservationCompleted
		}
		return s.repo.Delete(ctx, id)
	})
}
