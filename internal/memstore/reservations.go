package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
)

type reservationRepo struct{ s *Store }

func (r *reservationRepo) Insert(_ context.Context, res *reservation.Reservation) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.d.clients[res.ClientID] {
		return reservation.ErrClientNotFound
	}
	for _, l := range res.Rooms {
		if _, ok := s.d.rooms[l.RoomID]; !ok {
			return reservation.ErrRoomNotFound
		}
	}

	res.ID = s.id()
	res.CreatedAt = time.Now().UTC()
	for i := range res.Rooms {
		res.Rooms[i].ID = s.id()
	}

	stored := *res
	stored.Rooms = slices.Clone(res.Rooms)
	stored.Payments = nil
	stored.Invoice = nil
	s.d.reservations[res.ID] = stored
	return nil
}

// hydrate must be called with mu held.
func (s *Store) hydrate(res reservation.Reservation, full bool) *reservation.Reservation {
	out := res
	out.Rooms = make([]reservation.RoomLink, len(res.Rooms))
	for i, l := range res.Rooms {
		rm := s.d.rooms[l.RoomID]
		out.Rooms[i] = reservation.RoomLink{ID: l.ID, RoomID: l.RoomID, Number: rm.Number, Floor: rm.Floor, Price: rm.Price}
	}
	if !full {
		return &out
	}

	for _, id := range slices.Sorted(maps.Keys(s.d.payments)) {
		p := s.d.payments[id]
		if p.ReservationID == res.ID {
			out.Payments = append(out.Payments, reservation.PaymentLine{
				ID: p.ID, Amount: p.Amount, Method: string(p.Method), Status: string(p.Status),
			})
		}
	}
	for _, inv := range s.d.invoices {
		if inv.ReservationID == res.ID {
			out.Invoice = &reservation.InvoiceLine{ID: inv.ID, Total: inv.Total, CreatedAt: inv.CreatedAt}
		}
	}
	return &out
}

func (r *reservationRepo) GetByID(_ context.Context, id int64) (*reservation.Reservation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := mustExist(s.d.reservations, id, reservation.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return s.hydrate(res, true), nil
}

// LockByID only checks existence; atomic units already run one at a time.
func (r *reservationRepo) LockByID(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, err := mustExist(r.s.d.reservations, id, reservation.ErrNotFound)
	return err
}

func (r *reservationRepo) List(_ context.Context, f reservation.Filter) ([]*reservation.Reservation, int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*reservation.Reservation
	for _, res := range s.d.reservations {
		if f.ClientID != 0 && res.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && res.Status != f.Status {
			continue
		}
		if f.RoomID != 0 && !slices.Contains(res.RoomIDs(), f.RoomID) {
			continue
		}
		if f.From != nil && res.End.Before(*f.From) {
			continue
		}
		if f.To != nil && res.Start.After(*f.To) {
			continue
		}
		out = append(out, s.hydrate(res, false))
	}
	slices.SortFunc(out, func(a, b *reservation.Reservation) int {
		return cmp.Or(b.Start.Compare(a.Start), cmp.Compare(b.ID, a.ID))
	})
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *reservationRepo) UpdateStatus(_ context.Context, id int64, status reservation.Status, validatedBy *int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := mustExist(s.d.reservations, id, reservation.ErrNotFound)
	if err != nil {
		return err
	}
	if validatedBy != nil {
		if _, ok := s.d.employees[*validatedBy]; !ok {
			return reservation.ErrEmployeeNotFound
		}
		res.ValidatedBy = validatedBy
	}
	res.Status = status
	s.d.reservations[id] = res
	return nil
}

func (r *reservationRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.d.reservations[id]; !ok {
		return reservation.ErrNotFound
	}
	for _, p := range s.d.payments {
		if p.ReservationID == id {
			return reservation.ErrHasPayments
		}
	}
	delete(s.d.reservations, id)
	for invID, inv := range s.d.invoices {
		if inv.ReservationID == id {
			delete(s.d.invoices, invID)
		}
	}
	return nil
}

func (r *reservationRepo) LockRooms(_ context.Context, roomIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range roomIDs {
		if _, ok := r.s.d.rooms[id]; !ok {
			return reservation.ErrRoomNotFound
		}
	}
	return nil
}

func (r *reservationRepo) FindConflicts(_ context.Context, roomIDs []int64, start, end time.Time, excludeID int64) ([]reservation.Conflict, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []reservation.Conflict
	for _, res := range s.d.reservations {
		if res.ID == excludeID || res.Status == reservation.StatusCancelled {
			continue
		}
		if res.Start.After(end) || res.End.Before(start) {
			continue
		}
		for _, l := range res.Rooms {
			if slices.Contains(roomIDs, l.RoomID) {
				out = append(out, reservation.Conflict{RoomID: l.RoomID, ReservationID: res.ID, Start: res.Start, End: res.End})
			}
		}
	}
	slices.SortFunc(out, func(a, b reservation.Conflict) int {
		return cmp.Or(cmp.Compare(a.RoomID, b.RoomID), a.Start.Compare(b.Start))
	})
	return out, nil
}

func (r *reservationRepo) RoomsHeldByOthers(_ context.Context, roomIDs []int64, excludeID int64) ([]int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var held []int64
	for _, res := range s.d.reservations {
		if res.ID == excludeID || res.Status != reservation.StatusConfirmed {
			continue
		}
		for _, l := range res.Rooms {
			if slices.Contains(roomIDs, l.RoomID) && !slices.Contains(held, l.RoomID) {
				held = append(held, l.RoomID)
			}
		}
	}
	return held, nil
}
