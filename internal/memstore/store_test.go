package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

func TestRunAtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := s.AddRoom("101", money.FromFloat(100))

	boom := errors.New("boom")
	err := s.RunAtomic(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Rooms().SetStatus(ctx, r.ID, room.StatusOutOfService))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, room.StatusAvailable, s.Room(r.ID).Status)

	err = s.RunAtomic(ctx, func(ctx context.Context) error {
		return s.Rooms().SetStatus(ctx, r.ID, room.StatusOutOfService)
	})
	require.NoError(t, err)
	assert.Equal(t, room.StatusOutOfService, s.Room(r.ID).Status)
}

func TestRunAtomicJoinsOuterUnit(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.RunAtomic(ctx, func(ctx context.Context) error {
		return s.RunAtomic(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.AtomicUnits())
}
