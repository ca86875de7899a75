package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
)

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *payment.Payment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.d.reservations[p.ReservationID]; !ok {
		return payment.ErrReservationNotFound
	}
	if p.ReceivedBy != nil {
		if _, ok := s.d.employees[*p.ReceivedBy]; !ok {
			return payment.ErrEmployeeNotFound
		}
	}
	p.ID = s.id()
	s.d.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) GetByID(_ context.Context, id int64) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, err := mustExist(r.s.d.payments, id, payment.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) ListByReservation(_ context.Context, reservationID int64) ([]*payment.Payment, error) {
	out, _ := r.filter(payment.Filter{ReservationID: reservationID})
	slices.SortFunc(out, func(a, b *payment.Payment) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *paymentRepo) filter(f payment.Filter) ([]*payment.Payment, int) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*payment.Payment
	for _, p := range r.s.d.payments {
		if f.ReservationID != 0 && p.ReservationID != f.ReservationID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Method != "" && p.Method != f.Method {
			continue
		}
		out = append(out, &p)
	}
	return out, len(out)
}

func (r *paymentRepo) List(_ context.Context, f payment.Filter) ([]*payment.Payment, int, error) {
	out, total := r.filter(f)
	slices.SortFunc(out, func(a, b *payment.Payment) int { return cmp.Compare(b.ID, a.ID) })
	return paginate(out, f.Page, f.PageSize), total, nil
}

func (r *paymentRepo) Update(_ context.Context, p *payment.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.payments[p.ID]; !ok {
		return payment.ErrNotFound
	}
	r.s.d.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.payments[id]; !ok {
		return payment.ErrNotFound
	}
	delete(r.s.d.payments, id)
	return nil
}

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(_ context.Context, inv *invoice.Invoice) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.d.reservations[inv.ReservationID]; !ok {
		return invoice.ErrReservationNotFound
	}
	for _, existing := range s.d.invoices {
		if existing.ReservationID == inv.ReservationID {
			return invoice.ErrAlreadyExists
		}
	}
	if inv.Total <= 0 {
		return invoice.ErrInvalidAmount
	}
	inv.ID = s.id()
	inv.CreatedAt = time.Now().UTC()
	s.d.invoices[inv.ID] = *inv
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id int64) (*invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, err := mustExist(r.s.d.invoices, id, invoice.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByReservation(_ context.Context, reservationID int64) (*invoice.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.d.invoices {
		if inv.ReservationID == reservationID {
			return &inv, nil
		}
	}
	return nil, invoice.ErrNotFound
}

func (r *invoiceRepo) List(_ context.Context, f invoice.Filter) ([]*invoice.Invoice, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*invoice.Invoice
	for _, inv := range r.s.d.invoices {
		if f.ReservationID != 0 && inv.ReservationID != f.ReservationID {
			continue
		}
		out = append(out, &inv)
	}
	slices.SortFunc(out, func(a, b *invoice.Invoice) int { return cmp.Compare(b.ID, a.ID) })
	return paginate(out, f.Page, f.PageSize), len(out), nil
}

func (r *invoiceRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.invoices[id]; !ok {
		return invoice.ErrNotFound
	}
	delete(r.s.d.invoices, id)
	return nil
}
