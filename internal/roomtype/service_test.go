package roomtype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows   map[int64]*RoomType
	nextID int64
}

func (m *memRepo) Create(_ context.Context, rt *RoomType) error {
	for _, existing := range m.rows {
		if existing.Name == rt.Name {
			return ErrAlreadyExists
		}
	}
	m.nextID++
	rt.ID = m.nextID
	cp := *rt
	m.rows[rt.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*RoomType, error) {
	rt, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, _ Filter) ([]*RoomType, int, error) {
	var out []*RoomType
	for _, rt := range m.rows {
		out = append(out, rt)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, rt *RoomType) error {
	cp := *rt
	m.rows[rt.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func TestRoomTypeService(t *testing.T) {
	svc := NewService(&memRepo{rows: map[int64]*RoomType{}})
	ctx := context.Background()

	rt, err := svc.Create(ctx, CreateRequest{Name: " suite ", Description: "Sea view"})
	require.NoError(t, err)
	assert.Equal(t, NameSuite, rt.Name)

	_, err = svc.Create(ctx, CreateRequest{Name: "penthouse"})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Create(ctx, CreateRequest{Name: "SUITE"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	desc := "Garden view"
	updated, err := svc.Update(ctx, rt.ID, UpdateRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Garden view", updated.Description)

	require.NoError(t, svc.Delete(ctx, rt.ID))
	_, err = svc.GetByID(ctx, rt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
