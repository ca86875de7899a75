package reservation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/db"
	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/event"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

type CreateRequest struct {
	ClientID int64
	RoomIDs  []int64
	Start    time.Time
	End      time.Time
}

type Service interface {
	CheckAvailability(ctx context.Context, roomIDs []int64, start, end time.Time) error
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	GetByID(ctx context.Context, id int64) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)

	// Confirm moves PENDING to CONFIRMED on behalf of the employee behind
	// employeeUserID and takes the rooms out of service.
	Confirm(ctx context.Context, id int64, employeeUserID int64) (*Reservation, error)
	// Finish moves CONFIRMED to COMPLETED and releases the rooms.
	Finish(ctx context.Context, id int64) (*Reservation, error)
	// Cancel marks a PENDING reservation without payments CANCELLED.
	Cancel(ctx context.Context, id int64) (*Reservation, error)
	// Delete removes a PENDING reservation without payments.
	Delete(ctx context.Context, id int64) error

	// GetForUpdate locks and loads the reservation. It must run inside RunAtomic.
	GetForUpdate(ctx context.Context, id int64) (*Reservation, error)
	// AutoConfirm promotes a PENDING reservation to CONFIRMED without a
	// validating employee. It reports whether a transition happened and
	// leaves event publishing to the caller.
	AutoConfirm(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo      Repository
	tx        db.TxManager
	clients   ClientDirectory
	employees EmployeeDirectory
	rooms     RoomDirectory
	events    event.Publisher
}

func NewService(
	repo Repository,
	tx db.TxManager,
	clients ClientDirectory,
	employees EmployeeDirectory,
	rooms RoomDirectory,
	events event.Publisher,
) Service {
	return &service{
		repo:      repo,
		tx:        tx,
		clients:   clients,
		employees: employees,
		rooms:     rooms,
		events:    events,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	ids, err := normalizeRooms(req.RoomIDs)
	if err != nil {
		return nil, err
	}
	if err := validateRange(req.Start, req.End); err != nil {
		return nil, err
	}

	ok, err := s.clients.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrClientNotFound
	}

	res := &Reservation{
		ClientID: req.ClientID,
		Start:    req.Start,
		End:      req.End,
		Status:   StatusPending,
	}

	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		// Locking the rooms first makes the conflict check below authoritative
		// until commit.
		if err := s.repo.LockRooms(ctx, ids); err != nil {
			if errors.Is(err, ErrRoomNotFound) {
				if _, detailed := s.ensureRooms(ctx, ids); detailed != nil {
					return detailed
				}
			}
			return err
		}
		rooms, err := s.ensureRooms(ctx, ids)
		if err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, ids, req.Start, req.End, 0); err != nil {
			return err
		}

		res.Rooms = make([]RoomLink, len(rooms))
		for i, r := range rooms {
			res.Rooms[i] = RoomLink{RoomID: r.ID, Number: r.Number, Floor: r.Floor, Price: r.Price}
		}
		return s.repo.Insert(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "reservation created",
		"reservation_id", res.ID,
		"client_id", res.ClientID,
		"room_ids", ids,
	)
	event.PublishAfterCommit(ctx, s.events, event.New(event.ReservationCreated, res.ID, map[string]any{
		"client_id":  res.ClientID,
		"room_ids":   ids,
		"date_start": res.Start,
		"date_end":   res.End,
	}))

	return s.repo.GetByID(ctx, res.ID)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) GetForUpdate(ctx context.Context, id int64) (*Reservation, error) {
	if err := s.repo.LockByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) setRoomStatus(ctx context.Context, roomIDs []int64, status room.Status) error {
	for _, id := range roomIDs {
		if err := s.rooms.SetStatus(ctx, id, status); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Confirm(ctx context.Context, id int64, employeeUserID int64) (*Reservation, error) {
	emp, err := s.employees.GetByUserID(ctx, employeeUserID)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status != StatusPending {
			return ErrInvalidTransition
		}
		if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed, &emp.ID); err != nil {
			return err
		}
		return s.setRoomStatus(ctx, res.RoomIDs(), room.StatusOutOfService)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "reservation confirmed", "reservation_id", id, "employee_id", emp.ID)
	event.PublishAfterCommit(ctx, s.events, event.New(event.ReservationConfirmed, id, map[string]any{
		"validated_by": emp.ID,
	}))

	return s.repo.GetByID(ctx, id)
}

func (s *service) AutoConfirm(ctx context.Context, id int64) (bool, error) {
	var promoted bool
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status != StatusPending {
			return nil
		}
		if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed, nil); err != nil {
			return err
		}
		if err := s.setRoomStatus(ctx, res.RoomIDs(), room.StatusOutOfService); err != nil {
			return err
		}
		promoted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if promoted {
		slog.InfoContext(ctx, "reservation auto-confirmed", "reservation_id", id)
	}
	return promoted, nil
}

func (s *service) Finish(ctx context.Context, id int64) (*Reservation, error) {
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status != StatusConfirmed {
			return ErrInvalidTransition
		}
		if err := s.repo.UpdateStatus(ctx, id, StatusCompleted, nil); err != nil {
			return err
		}

		// A room stays out of service while another confirmed stay holds it.
		held, err := s.repo.RoomsHeldByOthers(ctx, res.RoomIDs(), id)
		if err != nil {
			return err
		}
		release := make([]int64, 0, len(res.Rooms))
		for _, roomID := range res.RoomIDs() {
			if !slices.Contains(held, roomID) {
				release = append(release, roomID)
			}
		}
		return s.setRoomStatus(ctx, release, room.StatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "reservation completed", "reservation_id", id)
	event.PublishAfterCommit(ctx, s.events, event.New(event.ReservationCompleted, id, nil))

	return s.repo.GetByID(ctx, id)
}

// checkRemovable guards Cancel and Delete.
func checkRemovable(res *Reservation) error {
	if len(res.Payments) > 0 {
		return ErrHasPayments
	}
	if res.Status != StatusPending {
		return ErrNotPending
	}
	return nil
}

func (s *service) Cancel(ctx context.Context, id int64) (*Reservation, error) {
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRemovable(res); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, id, StatusCancelled, nil)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "reservation cancelled", "reservation_id", id)
	event.PublishAfterCommit(ctx, s.events, event.New(event.ReservationCancelled, id, nil))

	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		res, err := s.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRemovable(res); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "reservation deleted", "reservation_id", id)
	event.PublishAfterCommit(ctx, s.events, event.New(event.ReservationDeleted, id, nil))
	return nil
}
