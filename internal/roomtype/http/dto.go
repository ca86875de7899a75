package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/response"
	"github.com/nekogravitycat/hotel-management-backend/internal/roomtype"
)

type CreateRoomTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (r *CreateRoomTypeRequest) Validate() error {
	return nil
}

type UpdateRoomTypeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r *UpdateRoomTypeRequest) Validate() error {
	return nil
}

type ListRoomTypesRequest struct {
	request.ListParams
}

type RoomTypeResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewRoomTypeResponse(rt *roomtype.RoomType) (RoomTypeResponse, error) {
	return response.Map[RoomTypeResponse](rt)
}
