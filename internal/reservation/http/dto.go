package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
)

type RoomLinkResponse struct {
	ID     int64        `json:"id"`
	RoomID int64        `json:"room_id"`
	Number string       `json:"number"`
	Floor  int          `json:"floor"`
	Price  money.Amount `json:"price_per_night"`
}

type PaymentLineResponse struct {
	ID     int64        `json:"id"`
	Amount money.Amount `json:"amount"`
	Method string       `json:"method"`
	Status string       `json:"status"`
}

type InvoiceLineResponse struct {
	ID        int64        `json:"id"`
	Total     money.Amount `json:"total"`
	CreatedAt time.Time    `json:"created_at"`
}

type ReservationResponse struct {
	ID          int64                 `json:"id"`
	ClientID    int64                 `json:"client_id"`
	DateStart   time.Time             `json:"date_start"`
	DateEnd     time.Time             `json:"date_end"`
	Nights      int64                 `json:"nights"`
	Status      string                `json:"status"`
	ValidatedBy *int64                `json:"validated_by"`
	CreatedAt   time.Time             `json:"created_at"`
	Rooms       []RoomLinkResponse    `json:"rooms"`
	Payments    []PaymentLineResponse `json:"payments,omitempty"`
	Invoice     *InvoiceLineResponse  `json:"invoice,omitempty"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:          r.ID,
		ClientID:    r.ClientID,
		DateStart:   r.Start,
		DateEnd:     r.End,
		Nights:      r.Nights(),
		Status:      string(r.Status),
		ValidatedBy: r.ValidatedBy,
		CreatedAt:   r.CreatedAt,
		Rooms:       make([]RoomLinkResponse, len(r.Rooms)),
	}
	for i, l := range r.Rooms {
		resp.Rooms[i] = RoomLinkResponse{ID: l.ID, RoomID: l.RoomID, Number: l.Number, Floor: l.Floor, Price: l.Price}
	}
	for _, p := range r.Payments {
		resp.Payments = append(resp.Payments, PaymentLineResponse{ID: p.ID, Amount: p.Amount, Method: p.Method, Status: p.Status})
	}
	if r.Invoice != nil {
		resp.Invoice = &InvoiceLineResponse{ID: r.Invoice.ID, Total: r.Invoice.Total, CreatedAt: r.Invoice.CreatedAt}
	}
	return resp
}

type CreateReservationRequest struct {
	ClientID  int64     `json:"client_id" binding:"required,min=1"`
	RoomIDs   []int64   `json:"room_ids" binding:"required,min=1,dive,min=1"`
	DateStart time.Time `json:"date_start" binding:"required"`
	DateEnd   time.Time `json:"date_end" binding:"required"`
}

func (r *CreateReservationRequest) Validate() error {
	if !r.DateEnd.After(r.DateStart) {
		return reservation.ErrInvalidRange
	}
	return nil
}

type CheckAvailabilityRequest struct {
	RoomIDs   []int64   `json:"room_ids" binding:"required,min=1,dive,min=1"`
	DateStart time.Time `json:"date_start" binding:"required"`
	DateEnd   time.Time `json:"date_end" binding:"required"`
}

func (r *CheckAvailabilityRequest) Validate() error {
	if !r.DateEnd.After(r.DateStart) {
		return reservation.ErrInvalidRange
	}
	return nil
}

type ListReservationsRequest struct {
	request.ListParams
	ClientID int64      `form:"client_id" binding:"omitempty,min=1"`
	RoomID   int64      `form:"room_id" binding:"omitempty,min=1"`
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy   string     `form:"sort_by" binding:"omitempty,oneof=date_start date_end created_at"`
}

func (r *ListReservationsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return reservation.ErrInvalidRange
	}
	return nil
}
