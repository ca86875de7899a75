package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
)

type PaymentResponse struct {
	ID             int64        `json:"id"`
	ReservationID  int64        `json:"reservation_id"`
	Amount         money.Amount `json:"amount"`
	Method         string       `json:"method"`
	Status         string       `json:"status"`
	ReceivedBy     *int64       `json:"received_by"`
	TransactionRef *string      `json:"transaction_ref"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		ReservationID:  p.ReservationID,
		Amount:         p.Amount,
		Method:         string(p.Method),
		Status:         string(p.Status),
		ReceivedBy:     p.ReceivedBy,
		TransactionRef: p.TransactionRef,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func newPaymentResponses(payments []*payment.Payment) []PaymentResponse {
	items := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = NewPaymentResponse(p)
	}
	return items
}

type SummaryResponse struct {
	ReservationID int64        `json:"reservation_id"`
	InvoiceTotal  money.Amount `json:"invoice_total"`
	TotalPaid     money.Amount `json:"total_paid"`
	TotalPending  money.Amount `json:"total_pending"`
	Remaining     money.Amount `json:"remaining"`
	IsFullyPaid   bool         `json:"is_fully_paid"`
}

func NewSummaryResponse(s *payment.Summary) SummaryResponse {
	return SummaryResponse{
		ReservationID: s.ReservationID,
		InvoiceTotal:  s.InvoiceTotal,
		TotalPaid:     s.TotalPaid,
		TotalPending:  s.TotalPending,
		Remaining:     s.Remaining,
		IsFullyPaid:   s.IsFullyPaid,
	}
}

type RecordPaymentRequest struct {
	ReservationID  int64        `json:"reservation_id" binding:"required,min=1"`
	Amount         money.Amount `json:"amount" binding:"required"`
	Method         string       `json:"method" binding:"required,oneof=CASH CARD BANK_TRANSFER ONLINE"`
	ReceivedBy     *int64       `json:"received_by" binding:"omitempty,min=1"`
	TransactionRef *string      `json:"transaction_ref" binding:"omitempty,max=255"`
}

func (r *RecordPaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return payment.ErrInvalidAmount
	}
	return nil
}

type UpdatePaymentRequest struct {
	Amount         *money.Amount `json:"amount"`
	Method         *string       `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER ONLINE"`
	TransactionRef *string       `json:"transaction_ref" binding:"omitempty,max=255"`
}

func (r *UpdatePaymentRequest) Validate() error {
	if r.Amount != nil && *r.Amount <= 0 {
		return payment.ErrInvalidAmount
	}
	return nil
}

type UpdatePaymentStatusRequest struct {
	Status         string  `json:"status" binding:"required,oneof=SUCCESS FAILED REFUNDED"`
	TransactionRef *string `json:"transaction_ref" binding:"omitempty,max=255"`
}

type ListPaymentsRequest struct {
	request.ListParams
	ReservationID int64  `form:"reservation_id" binding:"omitempty,min=1"`
	Status        string `form:"status" binding:"omitempty,oneof=PENDING SUCCESS FAILED REFUNDED"`
	Method        string `form:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER ONLINE"`
}
