package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
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
	byID   map[int64]*Client
	nextID int64
}

func (m *memRepo) Create(_ context.Context, c *Client) error {
	for _, existing := range m.byID {
		if existing.UserID == c.UserID {
			return ErrAlreadyExists
		}
	}
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Client, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *memRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memRepo) List(_ context.Context, _ Filter) ([]*Client, int, error) {
	var out []*Client
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, len(out), nil
}

func TestCreateClient(t *testing.T) {
	users := &stubUsers{users: map[int64]*user.User{
		1: {ID: 1, Email: "guest@hotel.test", FirstName: "G", LastName: "H", Role: auth.RoleClient},
		2: {ID: 2, Email: "desk@hotel.test", Role: auth.RoleEmployee},
	}}
	svc := NewService(&memRepo{byID: map[int64]*Client{}}, users)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "guest@hotel.test", c.Email)

	ok, err := svc.Exists(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(ctx, 1)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Create(ctx, 2)
	assert.ErrorIs(t, err, ErrRoleMismatch)

	_, err = svc.Create(ctx, 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
