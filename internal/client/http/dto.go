package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/client"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/response"
)

type CreateClientRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

func (r *CreateClientRequest) Validate() error {
	return nil
}

type ListClientsRequest struct {
	request.ListParams
	Name string `form:"name"`
}

func (r *ListClientsRequest) Validate() error {
	return nil
}

type ClientResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func NewClientResponse(c *client.Client) (ClientResponse, error) {
	return response.Map[ClientResponse](c)
}
