package reservation

import (
	"context"

	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
)

// ClientDirectory is satisfied by client.Service.
type ClientDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// EmployeeDirectory is satisfied by employee.Service. Lookups are keyed by
// the employee's user id.
type EmployeeDirectory interface {
	GetByUserID(ctx context.Context, userID int64) (*employee.Employee, error)
}

// RoomDirectory is satisfied by room.Service.
type RoomDirectory interface {
	GetByID(ctx context.Context, id int64) (*room.Room, error)
	SetStatus(ctx context.Context, id int64, status room.Status) error
	PriceFor(ctx context.Context, id int64) (money.Amount, error)
}
