package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
)

type InvoiceResponse struct {
	ID            int64        `json:"id"`
	ReservationID int64        `json:"reservation_id"`
	Total         money.Amount `json:"total"`
	CreatedAt     time.Time    `json:"created_at"`
}

func NewInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		ReservationID: inv.ReservationID,
		Total:         inv.Total,
		CreatedAt:     inv.CreatedAt,
	}
}

type CreateInvoiceRequest struct {
	ReservationID int64 `json:"reservation_id" binding:"required,min=1"`
}

type ListInvoicesRequest struct {
	request.ListParams
	ReservationID int64 `form:"reservation_id" binding:"omitempty,min=1"`
}
