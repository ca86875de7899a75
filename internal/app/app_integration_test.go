//go:build integration

package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/app"
	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/db/dbtest"
	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	invoiceHttp "github.com/nekogravitycat/hotel-management-backend/internal/invoice/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	paymentHttp "github.com/nekogravitycat/hotel-management-backend/internal/payment/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
	reservationHttp "github.com/nekogravitycat/hotel-management-backend/internal/reservation/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
	"github.com/nekogravitycat/hotel-management-backend/internal/roomtype"
	"github.com/nekogravitycat/hotel-management-backend/internal/user"
	userHttp "github.com/nekogravitycat/hotel-management-backend/internal/user/http"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	code := m.Run()
	dbtest.Terminate()
	os.Exit(code)
}

type hotel struct {
	c          *app.Container
	staffToken string
	employeeID int64
	clientID   int64
	roomType   int64
}

func newHotel(t *testing.T) *hotel {
	t.Helper()
	ctx := context.Background()

	c := app.NewContainer(app.Config{
		DBPool:       dbtest.NewPool(t),
		TxMaxRetries: 5,
		JWTSecret:    "integration-secret",
		JWTTTL:       30 * time.Minute,
		BcryptCost:   4, // Lower cost for testing purposes
	})

	staff, err := c.UserService.Register(ctx, user.RegisterRequest{
		Email: "desk@hotel.test", Password: "password123", FirstName: "Desk", LastName: "Clerk",
		Role: auth.RoleEmployee,
	})
	require.NoError(t, err)
	emp, err := c.EmployeeService.Create(ctx, employee.CreateRequest{
		UserID: staff.ID, Salary: money.FromFloat(2500), HiredOn: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	guest, err := c.UserService.Register(ctx, user.RegisterRequest{
		Email: "guest@hotel.test", Password: "password123", FirstName: "Ada", LastName: "Guest",
	})
	require.NoError(t, err)
	cl, err := c.ClientService.Create(ctx, guest.ID)
	require.NoError(t, err)

	rt, err := c.RoomTypeService.Create(ctx, roomtype.CreateRequest{Name: "SINGLE"})
	require.NoError(t, err)

	h := &hotel{c: c, employeeID: emp.ID, clientID: cl.ID, roomType: rt.ID}
	h.staffToken = h.login(t, "desk@hotel.test", "password123")
	return h
}

func (h *hotel) login(t *testing.T, email, password string) string {
	t.Helper()
	w := h.do(http.MethodPost, "/v1/auth/login", userHttp.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp userHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (h *hotel) addRoom(t *testing.T, number string, price float64) *room.Room {
	t.Helper()
	r, err := h.c.RoomService.Create(context.Background(), room.CreateRequest{
		Number: number, Floor: 1, Price: money.FromFloat(price), RoomTypeID: h.roomType,
	})
	require.NoError(t, err)
	return r
}

func (h *hotel) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.c.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func checkIn(d int) time.Time {
	return time.Date(2026, 7, d, 14, 0, 0, 0, time.UTC)
}

func TestConfirmedStayIsInvoiced(t *testing.T) {
	h := newHotel(t)
	r101 := h.addRoom(t, "101", 100)

	w := h.do(http.MethodPost, "/v1/reservations", reservationHttp.CreateReservationRequest{
		ClientID: h.clientID, RoomIDs: []int64{r101.ID}, DateStart: checkIn(1), DateEnd: checkIn(3),
	}, h.staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[reservationHttp.ReservationResponse](t, w)

	w = h.do(http.MethodPut, fmt.Sprintf("/v1/reservations/%d/confirm", res.ID), nil, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decode[reservationHttp.ReservationResponse](t, w)
	assert.Equal(t, "CONFIRMED", confirmed.Status)
	require.NotNil(t, confirmed.ValidatedBy)
	assert.Equal(t, h.employeeID, *confirmed.ValidatedBy)

	got, err := h.c.RoomService.GetByID(context.Background(), r101.ID)
	require.NoError(t, err)
	assert.Equal(t, room.StatusOutOfService, got.Status)

	w = h.do(http.MethodPost, "/v1/invoices", invoiceHttp.CreateInvoiceRequest{ReservationID: res.ID}, h.staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[invoiceHttp.InvoiceResponse](t, w)
	assert.Equal(t, money.FromFloat(200), inv.Total)

	w = h.do(http.MethodPost, "/v1/invoices", invoiceHttp.CreateInvoiceRequest{ReservationID: res.ID}, h.staffToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodGet, fmt.Sprintf("/v1/reservations/%d/invoice", res.ID), nil, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, inv.ID, decode[invoiceHttp.InvoiceResponse](t, w).ID)
}

func TestConcurrentBookingsOnPostgres(t *testing.T) {
	h := newHotel(t)
	r101 := h.addRoom(t, "101", 100)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := range attempts {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			// Every window overlaps the others on day 5.
			_, err := h.c.ReservationService.Create(context.Background(), reservation.CreateRequest{
				ClientID: h.clientID,
				RoomIDs:  []int64{r101.ID},
				Start:    checkIn(5).Add(-time.Duration(offset) * time.Hour),
				End:      checkIn(6),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.KindOf(err) == apperror.KindConflict:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	_, total, err := h.c.ReservationService.List(context.Background(), reservation.Filter{RoomID: r101.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCashPaymentSettlesStay(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	r101 := h.addRoom(t, "101", 100)

	res, err := h.c.ReservationService.Create(ctx, reservation.CreateRequest{
		ClientID: h.clientID, RoomIDs: []int64{r101.ID}, Start: checkIn(10), End: checkIn(12),
	})
	require.NoError(t, err)
	w := h.do(http.MethodPut, fmt.Sprintf("/v1/reservations/%d/confirm", res.ID), nil, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	_, err = h.c.InvoiceService.Create(ctx, res.ID)
	require.NoError(t, err)

	w = h.do(http.MethodPost, "/v1/payments", paymentHttp.RecordPaymentRequest{
		ReservationID: res.ID, Amount: money.FromFloat(200), Method: "CASH", ReceivedBy: &h.employeeID,
	}, h.staffToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "SUCCESS", decode[paymentHttp.PaymentResponse](t, w).Status)

	w = h.do(http.MethodGet, fmt.Sprintf("/v1/reservations/%d/summary", res.ID), nil, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[paymentHttp.SummaryResponse](t, w)
	assert.True(t, summary.IsFullyPaid)
	assert.Equal(t, money.Amount(0), summary.Remaining)

	w = h.do(http.MethodPost, "/v1/payments", paymentHttp.RecordPaymentRequest{
		ReservationID: res.ID, Amount: money.FromFloat(1), Method: "CASH",
	}, h.staffToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "overpayment", decode[map[string]any](t, w)["kind"])

	// Settled money blocks removal.
	err = h.c.ReservationService.Delete(ctx, res.ID)
	assert.ErrorIs(t, err, reservation.ErrHasPayments)
}

func TestOnlinePrepaymentConfirmsReservation(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	r101 := h.addRoom(t, "101", 100)

	res, err := h.c.ReservationService.Create(ctx, reservation.CreateRequest{
		ClientID: h.clientID, RoomIDs: []int64{r101.ID}, Start: checkIn(20), End: checkIn(21),
	})
	require.NoError(t, err)
	_, err = h.c.InvoiceService.IssueProforma(ctx, res.ID)
	require.NoError(t, err)

	p, err := h.c.PaymentService.Record(ctx, payment.RecordRequest{
		ReservationID: res.ID, Amount: money.FromFloat(100), Method: payment.MethodOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)

	w := h.do(http.MethodPatch, fmt.Sprintf("/v1/payments/%d/status", p.ID),
		paymentHttp.UpdatePaymentStatusRequest{Status: "SUCCESS"}, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := h.c.ReservationService.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, got.Status)
	assert.Nil(t, got.ValidatedBy)

	rm, err := h.c.RoomService.GetByID(ctx, r101.ID)
	require.NoError(t, err)
	assert.Equal(t, room.StatusOutOfService, rm.Status)
}

func TestFinishReleasesRooms(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	r101 := h.addRoom(t, "101", 100)

	res, err := h.c.ReservationService.Create(ctx, reservation.CreateRequest{
		ClientID: h.clientID, RoomIDs: []int64{r101.ID}, Start: checkIn(25), End: checkIn(26),
	})
	require.NoError(t, err)

	w := h.do(http.MethodPut, fmt.Sprintf("/v1/reservations/%d/finish", res.ID), nil, h.staffToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, "pending stays cannot finish")

	w = h.do(http.MethodPut, fmt.Sprintf("/v1/reservations/%d/confirm", res.ID), nil, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPut, fmt.Sprintf("/v1/reservations/%d/finish", res.ID), nil, h.staffToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "COMPLETED", decode[reservationHttp.ReservationResponse](t, w).Status)

	rm, err := h.c.RoomService.GetByID(ctx, r101.ID)
	require.NoError(t, err)
	assert.Equal(t, room.StatusAvailable, rm.Status)
}

func TestClientCannotManageReservations(t *testing.T) {
	h := newHotel(t)
	token := h.login(t, "guest@hotel.test", "password123")

	w := h.do(http.MethodGet, "/v1/reservations", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
