package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	"github.com/nekogravitycat/hotel-management-backend/internal/memstore"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/clock"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/response"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
	reservationHttp "github.com/nekogravitycat/hotel-management-backend/internal/reservation/http"
)

const (
	staffUserID  = 7
	clientUserID = 8
)

type testServer struct {
	router   *gin.Engine
	jwt      *auth.JWTManager
	store    *memstore.Store
	clientID int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	jwt := auth.NewJWTManager("test-secret", time.Minute)
	events := &memstore.Events{}
	resSvc := reservation.NewService(
		store.Reservations(), store, store.Clients(), store.Employees(), store.Rooms(), events,
	)
	paySvc := payment.NewService(
		store.Payments(), store, resSvc, store.Employees(), events, clock.NewFixedClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
	)
	invSvc := invoice.NewService(store.Invoices(), store, resSvc, store.Rooms(), events)

	srv := &testServer{
		router: NewRouter(Config{
			JWTManager:         jwt,
			ReservationService: resSvc,
			PaymentService:     paySvc,
			InvoiceService:     invSvc,
		}),
		jwt:      jwt,
		store:    store,
		clientID: store.AddClient(),
	}
	store.AddEmployee(staffUserID)
	return srv
}

func (s *testServer) token(t *testing.T, userID int64, role auth.Role) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
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
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReservationRoutesRequireStaff(t *testing.T) {
	srv := newTestServer(t)

	t.Run("No Token", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/v1/reservations", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Client Role", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/v1/reservations", nil, srv.token(t, clientUserID, auth.RoleClient))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Employee Role", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/v1/reservations", nil, srv.token(t, staffUserID, auth.RoleEmployee))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, staffUserID, auth.RoleEmployee)
	r101 := srv.store.AddRoom("101", money.FromFloat(100))

	start := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	var created reservationHttp.ReservationResponse

	t.Run("Create", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/v1/reservations", reservationHttp.CreateReservationRequest{
			ClientID:  srv.clientID,
			RoomIDs:   []int64{r101.ID},
			DateStart: start,
			DateEnd:   end,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		assert.Equal(t, "PENDING", created.Status)
		assert.EqualValues(t, 2, created.Nights)
		require.Len(t, created.Rooms, 1)
		assert.Equal(t, r101.ID, created.Rooms[0].RoomID)
	})

	t.Run("Overlap Is Rejected With Conflicts", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/v1/reservations", reservationHttp.CreateReservationRequest{
			ClientID:  srv.clientID,
			RoomIDs:   []int64{r101.ID},
			DateStart: end,
			DateEnd:   end.Add(24 * time.Hour),
		}, token)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "conflict", resp.Kind)
		assert.Contains(t, resp.Details, "conflicts")
	})

	t.Run("Invalid Body", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/v1/reservations", map[string]any{"client_id": srv.clientID}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Confirm", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/v1/reservations/"+itoa(created.ID)+"/confirm", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp reservationHttp.ReservationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CONFIRMED", resp.Status)
		assert.NotNil(t, resp.ValidatedBy)
	})

	t.Run("Confirm Twice", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/v1/reservations/"+itoa(created.ID)+"/confirm", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown Reservation", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/v1/reservations/9999", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Generated", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/healthz", nil, "")
		assert.Len(t, w.Header().Get(requestIDHeader), 36)
	})

	t.Run("Propagated", func(t *testing.T) {
		const id = "6f1c7a7e-2d9b-4b53-9a57-0c3f3c1d8e11"
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(requestIDHeader, id)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		assert.Equal(t, id, w.Header().Get(requestIDHeader))
	})

	t.Run("Garbage Is Replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(requestIDHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		assert.NotEqual(t, "not-a-uuid", w.Header().Get(requestIDHeader))
	})
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/reservations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"https://a.example", []string{"https://a.example"}},
		{" https://a.example , ,https://b.example ", []string{"https://a.example", "https://b.example"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitOrigins(tt.in), tt.in)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
