package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/clock"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/roomtype"
)

type CreateRequest struct {
	Number     string
	Floor      int
	Price      money.Amount
	Status     Status // Empty means AVAILABLE
	RoomTypeID int64
}

type UpdateRequest struct {
	Number     *string
	Floor      *int
	Price      *money.Amount
	RoomTypeID *int64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Room, error)
	// UpdateStatus is the manual status edit made by staff.
	UpdateStatus(ctx context.Context, id int64, status Status) (*Room, error)
	Delete(ctx context.Context, id int64) error

	// SetStatus flips a room as a side effect of a reservation transition.
	SetStatus(ctx context.Context, id int64, status Status) error
	PriceFor(ctx context.Context, id int64) (money.Amount, error)
}

type service struct {
	repo      Repository
	roomTypes roomtype.Service
	clock     clock.Clock
}

func NewService(repo Repository, roomTypes roomtype.Service, clk clock.Clock) Service {
	return &service{
		repo:      repo,
		roomTypes: roomTypes,
		clock:     clk,
	}
}

func (s *service) checkRoomType(ctx context.Context, id int64) error {
	if _, err := s.roomTypes.GetByID(ctx, id); err != nil {
		if errors.Is(err, roomtype.ErrNotFound) {
			return ErrInvalidRoomType
		}
		return err
	}
	return nil
}

func validate(r *Room) error {
	if r.Number == "" {
		return ErrNumberRequired
	}
	if r.Floor < 0 {
		return ErrInvalidFloor
	}
	if r.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	status := req.Status
	if status == "" {
		status = StatusAvailable
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	r := &Room{
		Number:     strings.TrimSpace(req.Number),
		Floor:      req.Floor,
		Price:      req.Price,
		Status:     status,
		RoomTypeID: req.RoomTypeID,
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	if err := s.checkRoomType(ctx, r.RoomTypeID); err != nil {
		return nil, err
	}

	// Unique (number, floor) is enforced by the table.
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, r.ID)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error) {
	if (filter.Start == nil) != (filter.End == nil) {
		return nil, ErrInvalidRange
	}
	if filter.Start != nil && !filter.End.After(*filter.Start) {
		return nil, ErrInvalidRange
	}
	return s.repo.ListAvailable(ctx, filter)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		r.Number = strings.TrimSpace(*req.Number)
	}
	if req.Floor != nil {
		r.Floor = *req.Floor
	}
	if req.Price != nil {
		r.Price = *req.Price
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	if req.RoomTypeID != nil && *req.RoomTypeID != r.RoomTypeID {
		if err := s.checkRoomType(ctx, *req.RoomTypeID); err != nil {
			return nil, err
		}
		r.RoomTypeID = *req.RoomTypeID
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status Status) (*Room, error) {
	if err := s.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "room status edited", "room_id", id, "status", status)
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.SetStatus(ctx, id, status)
}

func (s *service) PriceFor(ctx context.Context, id int64) (money.Amount, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return r.Price, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.repo.HasActiveReservations(ctx, id, s.clock.Now())
	if err != nil {
		return err
	}
	if active {
		return ErrActiveReservations
	}

	return s.repo.Delete(ctx, id)
}
