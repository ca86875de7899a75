package employee

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/user"
)

type stubUsers struct {
	user.Service
	users map[int64]*user.User
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type memRepo struct {
	rows   []*Employee
	nextID int64
}

func (m *memRepo) Create(_ context.Context, e *Employee) error {
	for _, existing := range m.rows {
		if existing.UserID == e.UserID {
			return ErrAlreadyExists
		}
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Employee, error) {
	for _, e := range m.rows {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByUserID(_ context.Context, userID int64) (*Employee, error) {
	for _, e := range m.rows {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, _ Filter) ([]*Employee, int, error) {
	return m.rows, len(m.rows), nil
}

func TestEmployeeDirectory(t *testing.T) {
	users := &stubUsers{users: map[int64]*user.User{
		10: {ID: 10, Email: "desk@hotel.test", Role: auth.RoleEmployee},
		11: {ID: 11, Email: "guest@hotel.test", Role: auth.RoleClient},
	}}
	svc := NewService(&memRepo{}, users)
	ctx := context.Background()
	hired := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateRequest{UserID: 10, Salary: 0, HiredOn: hired})
	assert.ErrorIs(t, err, ErrInvalidSalary)

	_, err = svc.Create(ctx, CreateRequest{UserID: 11, Salary: money.FromFloat(2000), HiredOn: hired})
	assert.ErrorIs(t, err, ErrRoleMismatch)

	e, err := svc.Create(ctx, CreateRequest{UserID: 10, Salary: money.FromFloat(2000), HiredOn: hired})
	require.NoError(t, err)
	assert.Equal(t, "desk@hotel.test", e.Email)

	exists, err := svc.ExistsByUserID(ctx, 10)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ExistsByUserID(ctx, 11)
	require.NoError(t, err)
	assert.False(t, exists)

	byUser, err := svc.GetByUserID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, e.ID, byUser.ID)
}
