package payment_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/event"
	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	"github.com/nekogravitycat/hotel-management-backend/internal/memstore"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/clock"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

const employeeUserID = 42

func day(d int) time.Time {
	return time.Date(2026, 3, d, 14, 0, 0, 0, time.UTC)
}

type fixture struct {
	store        *memstore.Store
	events       *memstore.Events
	clock        *clock.FixedClock
	reservations reservation.Service
	invoices     invoice.Service
	svc          payment.Service
	clientID     int64
	employeeID   int64
	room101      room.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	events := &memstore.Events{}
	clk := clock.NewFixedClock(day(1))
	emp := store.AddEmployee(employeeUserID)
	reservations := reservation.NewService(store.Reservations(), store, store.Clients(), store.Employees(), store.Rooms(), events)
	return &fixture{
		store:        store,
		events:       events,
		clock:        clk,
		reservations: reservations,
		invoices:     invoice.NewService(store.Invoices(), store, reservations, store.Rooms(), events),
		svc:          payment.NewService(store.Payments(), store, reservations, store.Employees(), events, clk),
		clientID:     store.AddClient(),
		employeeID:   emp.ID,
		room101:      store.AddRoom("101", money.FromFloat(100)),
	}
}

// pending books room 101 for two nights.
func (f *fixture) pending(t *testing.T) *reservation.Reservation {
	t.Helper()
	res, err := f.reservations.Create(context.Background(), reservation.CreateRequest{
		ClientID: f.clientID,
		RoomIDs:  []int64{f.room101.ID},
		Start:    day(1),
		End:      day(3),
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) record(t *testing.T, reservationID int64, amount float64, method payment.Method) *payment.Payment {
	t.Helper()
	p, err := f.svc.Record(context.Background(), payment.RecordRequest{
		ReservationID: reservationID,
		Amount:        money.FromFloat(amount),
		Method:        method,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) status(t *testing.T, reservationID int64) reservation.Status {
	t.Helper()
	res, err := f.reservations.GetByID(context.Background(), reservationID)
	require.NoError(t, err)
	return res.Status
}

func countEvents(types []string, want string) int {
	n := 0
	for _, ty := range types {
		if ty == want {
			n++
		}
	}
	return n
}

func TestCashPaymentSettlesConfirmedStay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	_, err := f.reservations.Confirm(ctx, res.ID, employeeUserID)
	require.NoError(t, err)
	inv, err := f.invoices.Create(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, money.FromFloat(200), inv.Total)

	p := f.record(t, res.ID, 200, payment.MethodCash)
	assert.Equal(t, payment.StatusSuccess, p.Status)
	assert.Equal(t, day(1), p.CreatedAt)

	sum, err := f.svc.Summary(ctx, res.ID)
	require.NoError(t, err)
	want := &payment.Summary{
		ReservationID: res.ID,
		InvoiceTotal:  money.FromFloat(200),
		TotalPaid:     money.FromFloat(200),
		Remaining:     0,
		IsFullyPaid:   true,
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestPrepaymentAutoConfirms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	_, err := f.invoices.IssueProforma(ctx, res.ID)
	require.NoError(t, err)

	transfer := f.record(t, res.ID, 50, payment.MethodBankTransfer)
	assert.Equal(t, payment.StatusPending, transfer.Status)
	assert.Equal(t, reservation.StatusPending, f.status(t, res.ID))

	sum, err := f.svc.Summary(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(50), sum.TotalPending)
	assert.Equal(t, money.FromFloat(200), sum.Remaining)

	ref := "TX-981"
	f.clock.Set(day(2))
	transfer, err = f.svc.UpdateStatus(ctx, transfer.ID, payment.StatusSuccess, &ref)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, transfer.Status)
	assert.Equal(t, &ref, transfer.TransactionRef)
	assert.Equal(t, day(2), transfer.UpdatedAt)
	assert.Equal(t, reservation.StatusPending, f.status(t, res.ID), "50 of 200 is not enough")

	f.record(t, res.ID, 150, payment.MethodCard)
	assert.Equal(t, reservation.StatusConfirmed, f.status(t, res.ID))
	assert.Equal(t, room.StatusOutOfService, f.store.Room(f.room101.ID).Status)

	// A repeated settlement signal neither re-confirms nor double-counts.
	_, err = f.svc.UpdateStatus(ctx, transfer.ID, payment.StatusSuccess, nil)
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
	assert.Equal(t, reservation.StatusConfirmed, f.status(t, res.ID))
	assert.Equal(t, 1, countEvents(f.events.Types(), event.ReservationConfirmed))

	sum, err = f.svc.Summary(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(200), sum.TotalPaid)
	assert.True(t, sum.IsFullyPaid)
}

func TestNoInvoiceNeverAutoConfirms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)

	f.record(t, res.ID, 500, payment.MethodCash)
	assert.Equal(t, reservation.StatusPending, f.status(t, res.ID))

	sum, err := f.svc.Summary(ctx, res.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.InvoiceTotal)
	assert.Zero(t, sum.Remaining)
	assert.False(t, sum.IsFullyPaid)
}

func TestOverpayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	_, err := f.invoices.IssueProforma(ctx, res.ID)
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, payment.RecordRequest{
		ReservationID: res.ID,
		Amount:        money.FromFloat(200.01),
		Method:        payment.MethodCash,
	})
	assert.ErrorIs(t, err, payment.ErrOverpayment)
	assert.Equal(t, apperror.KindOverpayment, apperror.KindOf(err))

	pendingTransfer := f.record(t, res.ID, 150, payment.MethodOnline)
	f.record(t, res.ID, 100, payment.MethodCash)

	// Settling would push paid to 250 of 200.
	_, err = f.svc.UpdateStatus(ctx, pendingTransfer.ID, payment.StatusSuccess, nil)
	assert.ErrorIs(t, err, payment.ErrOverpayment)

	got, err := f.svc.GetByID(ctx, pendingTransfer.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, got.Status)

	sum, err := f.svc.Summary(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, sum.TotalPaid <= sum.InvoiceTotal, "paid %s exceeds total %s", sum.TotalPaid.Format(), sum.InvoiceTotal.Format())
}

func TestRecordValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	unknownEmployee := int64(9999)

	tests := []struct {
		name    string
		req     payment.RecordRequest
		wantErr error
	}{
		{"zero amount", payment.RecordRequest{ReservationID: res.ID, Amount: 0, Method: payment.MethodCash}, payment.ErrInvalidAmount},
		{"negative amount", payment.RecordRequest{ReservationID: res.ID, Amount: -100, Method: payment.MethodCash}, payment.ErrInvalidAmount},
		{"unknown method", payment.RecordRequest{ReservationID: res.ID, Amount: 100, Method: "CHEQUE"}, payment.ErrInvalidMethod},
		{"unknown reservation", payment.RecordRequest{ReservationID: 9999, Amount: 100, Method: payment.MethodCash}, payment.ErrReservationNotFound},
		{"unknown employee", payment.RecordRequest{ReservationID: res.ID, Amount: 100, Method: payment.MethodCash, ReceivedBy: &unknownEmployee}, payment.ErrEmployeeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Record(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	p, err := f.svc.Record(ctx, payment.RecordRequest{
		ReservationID: res.ID,
		Amount:        100,
		Method:        payment.MethodCash,
		ReceivedBy:    &f.employeeID,
	})
	require.NoError(t, err)
	assert.Equal(t, &f.employeeID, p.ReceivedBy)
}

func TestRecordOnCancelledReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	_, err := f.reservations.Cancel(ctx, res.ID)
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, payment.RecordRequest{ReservationID: res.ID, Amount: 100, Method: payment.MethodCash})
	assert.ErrorIs(t, err, payment.ErrReservationCancelled)
}

func TestStatusTransitions(t *testing.T) {
	all := []payment.Status{payment.StatusPending, payment.StatusSuccess, payment.StatusFailed, payment.StatusRefunded}
	allowed := map[[2]payment.Status]bool{
		{payment.StatusPending, payment.StatusSuccess}:  true,
		{payment.StatusPending, payment.StatusFailed}:   true,
		{payment.StatusPending, payment.StatusRefunded}: true,
		{payment.StatusSuccess, payment.StatusRefunded}: true,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				assert.Equal(t, allowed[[2]payment.Status{from, to}], from.CanTransitionTo(to))
			})
		}
	}
}

func TestStatusNeverReturnsToPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)

	transfer := f.record(t, res.ID, 50, payment.MethodBankTransfer)
	_, err := f.svc.UpdateStatus(ctx, transfer.ID, payment.StatusFailed, nil)
	require.NoError(t, err)

	for _, next := range []payment.Status{payment.StatusPending, payment.StatusSuccess, payment.StatusRefunded} {
		_, err := f.svc.UpdateStatus(ctx, transfer.ID, next, nil)
		assert.ErrorIs(t, err, payment.ErrInvalidTransition, "FAILED to %s", next)
	}

	cash := f.record(t, res.ID, 50, payment.MethodCash)
	refunded, err := f.svc.UpdateStatus(ctx, cash.ID, payment.StatusRefunded, nil)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, refunded.Status)

	_, err = f.svc.UpdateStatus(ctx, cash.ID, payment.StatusPending, nil)
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
}

func TestUpdateAndDeleteOnlyWhileOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)

	transfer := f.record(t, res.ID, 50, payment.MethodBankTransfer)
	amount := money.FromFloat(75)
	method := payment.MethodOnline
	updated, err := f.svc.Update(ctx, transfer.ID, payment.UpdateRequest{Amount: &amount, Method: &method})
	require.NoError(t, err)
	assert.Equal(t, amount, updated.Amount)
	assert.Equal(t, payment.MethodOnline, updated.Method)
	assert.Equal(t, payment.StatusPending, updated.Status)

	bad := money.Amount(0)
	_, err = f.svc.Update(ctx, transfer.ID, payment.UpdateRequest{Amount: &bad})
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)

	cash := f.record(t, res.ID, 20, payment.MethodCash)
	_, err = f.svc.Update(ctx, cash.ID, payment.UpdateRequest{Amount: &amount})
	assert.ErrorIs(t, err, payment.ErrImmutable)
	assert.ErrorIs(t, f.svc.Delete(ctx, cash.ID), payment.ErrImmutable)

	require.NoError(t, f.svc.Delete(ctx, transfer.ID))
	_, err = f.svc.GetByID(ctx, transfer.ID)
	assert.ErrorIs(t, err, payment.ErrNotFound)
}

func TestDeleteReservationWithSettledPaymentFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	p := f.record(t, res.ID, 80, payment.MethodCash)

	err := f.reservations.Delete(ctx, res.ID)
	assert.ErrorIs(t, err, reservation.ErrHasPayments)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	assert.Equal(t, reservation.StatusPending, f.status(t, res.ID))
	got, err := f.svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, got.Status)
}

func TestListByReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res := f.pending(t)
	first := f.record(t, res.ID, 10, payment.MethodCash)
	second := f.record(t, res.ID, 20, payment.MethodOnline)

	items, err := f.svc.ListByReservation(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)

	_, err = f.svc.ListByReservation(ctx, 9999)
	assert.ErrorIs(t, err, payment.ErrReservationNotFound)

	pending, total, err := f.svc.List(ctx, payment.Filter{Status: payment.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, second.ID, pending[0].ID)
}
