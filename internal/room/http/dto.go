package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/response"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

type RoomResponse struct {
	ID           int64        `json:"id"`
	Number       string       `json:"number"`
	Floor        int          `json:"floor"`
	Price        money.Amount `json:"price_per_night"`
	Status       string       `json:"status"`
	RoomTypeID   int64        `json:"room_type_id"`
	RoomTypeName string       `json:"room_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

func NewRoomResponse(r *room.Room) (RoomResponse, error) {
	return response.Map[RoomResponse](r)
}

func newRoomResponses(rooms []*room.Room) ([]RoomResponse, error) {
	return response.MapAll[RoomResponse](rooms)
}

type CreateRoomRequest struct {
	Number     string       `json:"number" binding:"required"`
	Floor      *int         `json:"floor" binding:"required,min=0"`
	Price      money.Amount `json:"price_per_night" binding:"required"`
	Status     string       `json:"status" binding:"omitempty,oneof=AVAILABLE OUT_OF_SERVICE"`
	RoomTypeID int64        `json:"room_type_id" binding:"required,min=1"`
}

func (r *CreateRoomRequest) Validate() error {
	if r.Price <= 0 {
		return room.ErrInvalidPrice
	}
	return nil
}

type UpdateRoomRequest struct {
	Number     *string       `json:"number"`
	Floor      *int          `json:"floor" binding:"omitempty,min=0"`
	Price      *money.Amount `json:"price_per_night"`
	RoomTypeID *int64        `json:"room_type_id" binding:"omitempty,min=1"`
}

func (r *UpdateRoomRequest) Validate() error {
	if r.Price != nil && *r.Price <= 0 {
		return room.ErrInvalidPrice
	}
	return nil
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE OUT_OF_SERVICE"`
}

type ListRoomsRequest struct {
	request.ListParams
	Status     string `form:"status" binding:"omitempty,oneof=AVAILABLE OUT_OF_SERVICE"`
	RoomTypeID int64  `form:"room_type_id" binding:"omitempty,min=1"`
	Floor      *int   `form:"floor" binding:"omitempty,min=0"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=floor number price_cents created_at"`
}

func (r *ListRoomsRequest) Validate() error {
	return nil
}

// ListAvailableRequest optionally restricts the listing to rooms free over [start, end].
type ListAvailableRequest struct {
	Start      *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End        *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	RoomTypeID int64      `form:"room_type_id" binding:"omitempty,min=1"`
}
