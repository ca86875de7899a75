// Package memstore is an in-memory backing store for the reservation,
// payment and invoice services. Atomic units run one at a time and roll
// back by restoring a snapshot, so service tests see the same
// all-or-nothing behaviour as the Postgres repositories.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

type data struct {
	nextID       int64
	rooms        map[int64]room.Room
	clients      map[int64]bool
	employees    map[int64]employee.Employee
	reservations map[int64]reservation.Reservation
	payments     map[int64]payment.Payment
	invoices     map[int64]invoice.Invoice
}

func (d data) clone() data {
	c := d
	c.rooms = maps.Clone(d.rooms)
	c.clients = maps.Clone(d.clients)
	c.employees = maps.Clone(d.employees)
	c.reservations = make(map[int64]reservation.Reservation, len(d.reservations))
	for id, r := range d.reservations {
		r.Rooms = slices.Clone(r.Rooms)
		c.reservations[id] = r
	}
	c.payments = maps.Clone(d.payments)
	c.invoices = maps.Clone(d.invoices)
	return c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    data

	failStatus map[int64]error
	atomics    int
}

func New() *Store {
	return &Store{
		d: data{
			rooms:        map[int64]room.Room{},
			clients:      map[int64]bool{},
			employees:    map[int64]employee.Employee{},
			reservations: map[int64]reservation.Reservation{},
			payments:     map[int64]payment.Payment{},
			invoices:     map[int64]invoice.Invoice{},
		},
		failStatus: map[int64]error{},
	}
}

func (s *Store) id() int64 {
	s.d.nextID++
	return s.d.nextID
}

type txKey struct{}

// RunAtomic implements db.TxManager.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.atomics++
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// AtomicUnits counts the outermost RunAtomic calls so far.
func (s *Store) AtomicUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atomics
}

// FailSetStatus makes every status change of roomID fail with err.
func (s *Store) FailSetStatus(roomID int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus[roomID] = err
}

// AddRoom seeds an AVAILABLE room on floor 1.
func (s *Store) AddRoom(number string, price money.Amount) room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := room.Room{
		ID:           s.id(),
		Number:       number,
		Floor:        1,
		Price:        price,
		Status:       room.StatusAvailable,
		RoomTypeID:   1,
		RoomTypeName: "DOUBLE",
		CreatedAt:    time.Now().UTC(),
	}
	s.d.rooms[r.ID] = r
	return r
}

func (s *Store) AddClient() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.d.clients[id] = true
	return id
}

// AddEmployee seeds an employee profile for userID.
func (s *Store) AddEmployee(userID int64) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := employee.Employee{
		ID:        s.id(),
		UserID:    userID,
		Salary:    money.FromFloat(3000),
		HiredOn:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC(),
	}
	s.d.employees[e.ID] = e
	return e
}

// Room returns the current state of a seeded room.
func (s *Store) Room(id int64) room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.rooms[id]
}

// Counts reports how many reservations, payments and invoices are stored.
func (s *Store) Counts() (reservations, payments, invoices int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.d.reservations), len(s.d.payments), len(s.d.invoices)
}

func (s *Store) Rooms() *Rooms         { return &Rooms{s: s} }
func (s *Store) Clients() *Clients     { return &Clients{s: s} }
func (s *Store) Employees() *Employees { return &Employees{s: s} }

func (s *Store) Reservations() reservation.Repository { return &reservationRepo{s: s} }
func (s *Store) Payments() payment.Repository         { return &paymentRepo{s: s} }
func (s *Store) Invoices() invoice.Repository         { return &invoiceRepo{s: s} }

// Rooms is the room directory view.
type Rooms struct{ s *Store }

func (v *Rooms) GetByID(_ context.Context, id int64) (*room.Room, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.d.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return &r, nil
}

func (v *Rooms) SetStatus(_ context.Context, id int64, status room.Status) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.failStatus[id]; err != nil {
		return err
	}
	r, ok := v.s.d.rooms[id]
	if !ok {
		return room.ErrNotFound
	}
	if !status.Valid() {
		return room.ErrInvalidStatus
	}
	r.Status = status
	v.s.d.rooms[id] = r
	return nil
}

func (v *Rooms) PriceFor(ctx context.Context, id int64) (money.Amount, error) {
	r, err := v.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return r.Price, nil
}

// SetPrice changes the nightly price of a seeded room.
func (v *Rooms) SetPrice(id int64, price money.Amount) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r := v.s.d.rooms[id]
	r.Price = price
	v.s.d.rooms[id] = r
}

type Clients struct{ s *Store }

func (v *Clients) Exists(_ context.Context, id int64) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.d.clients[id], nil
}

type Employees struct{ s *Store }

func (v *Employees) GetByID(_ context.Context, id int64) (*employee.Employee, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	e, ok := v.s.d.employees[id]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return &e, nil
}

func (v *Employees) GetByUserID(_ context.Context, userID int64) (*employee.Employee, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, e := range v.s.d.employees {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, employee.ErrNotFound
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	from := (page - 1) * pageSize
	if from >= len(items) {
		return nil
	}
	return items[from:min(from+pageSize, len(items))]
}

func mustExist[K comparable, V any](m map[K]V, k K, notFound error) (V, error) {
	v, ok := m[k]
	if !ok {
		var zero V
		return zero, notFound
	}
	return v, nil
}
