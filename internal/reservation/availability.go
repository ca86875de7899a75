package reservation

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

// normalizeRooms returns the sorted, de-duplicated room ids.
func normalizeRooms(roomIDs []int64) ([]int64, error) {
	if len(roomIDs) == 0 {
		return nil, ErrNoRooms
	}
	ids := slices.Clone(roomIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if ids[0] <= 0 {
		return nil, ErrRoomNotFound
	}
	return ids, nil
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return ErrInvalidRange
	}
	return nil
}

// ensureRooms resolves each room through the directory and reports the
// missing ones.
func (s *service) ensureRooms(ctx context.Context, roomIDs []int64) ([]*room.Room, error) {
	rooms := make([]*room.Room, 0, len(roomIDs))
	var missing []int64
	for _, id := range roomIDs {
		r, err := s.rooms.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, room.ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return nil, err
		}
		rooms = append(rooms, r)
	}
	if len(missing) > 0 {
		return nil, apperror.WithDetails(ErrRoomNotFound, map[string]any{"room_ids": missing})
	}
	return rooms, nil
}

// checkConflicts fails with ErrRoomsUnavailable listing every overlapping booking.
func (s *service) checkConflicts(ctx context.Context, roomIDs []int64, start, end time.Time, excludeID int64) error {
	conflicts, err := s.repo.FindConflicts(ctx, roomIDs, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return apperror.WithDetails(ErrRoomsUnavailable, map[string]any{"conflicts": conflicts})
	}
	return nil
}

// CheckAvailability reports whether every room is free over [start, end].
// It has no side effects; Create repeats the check inside its own atomic unit.
func (s *service) CheckAvailability(ctx context.Context, roomIDs []int64, start, end time.Time) error {
	ids, err := normalizeRooms(roomIDs)
	if err != nil {
		return err
	}
	if err := validateRange(start, end); err != nil {
		return err
	}
	if _, err := s.ensureRooms(ctx, ids); err != nil {
		return err
	}
	return s.checkConflicts(ctx, ids, start, end, 0)
}
