package employee

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/user"
)

type CreateRequest struct {
	UserID  int64
	Salary  money.Amount
	HiredOn time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	// GetByUserID resolves the employee profile behind an authenticated user.
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	ExistsByUserID(ctx context.Context, userID int64) (bool, error)
	List(ctx context.Context, filter Filter) ([]*Employee, int, error)
}

type service struct {
	repo  Repository
	users user.Service
}

func NewService(repo Repository, users user.Service) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Employee, error) {
	if req.Salary <= 0 {
		return nil, ErrInvalidSalary
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.Role.IsStaff() {
		return nil, ErrRoleMismatch
	}

	e := &Employee{
		UserID:  req.UserID,
		Salary:  req.Salary,
		HiredOn: req.HiredOn,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	e.Email = u.Email
	e.FirstName = u.FirstName
	e.LastName = u.LastName
	return e, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByUserID(ctx context.Context, userID int64) (*Employee, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) ExistsByUserID(ctx context.Context, userID int64) (bool, error) {
	_, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Employee, int, error) {
	return s.repo.List(ctx, filter)
}
