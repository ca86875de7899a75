package client

import (
	"context"
	"errors"

	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/user"
)

type Service interface {
	Create(ctx context.Context, userID int64) (*Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, filter Filter) ([]*Client, int, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo  Repository
	users user.Service
}

func NewService(repo Repository, users user.Service) Service {
	return &service{repo: repo, users: users}
}

// Create opens the client profile of an existing CLIENT user.
func (s *service) Create(ctx context.Context, userID int64) (*Client, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != auth.RoleClient {
		return nil, ErrRoleMismatch
	}

	c := &Client{UserID: userID}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	c.Email = u.Email
	c.FirstName = u.FirstName
	c.LastName = u.LastName
	c.Phone = u.Phone
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Client, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}
