package employee

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
)

var (
	ErrNotFound      = apperror.New(apperror.KindNotFound, "employee not found")
	ErrAlreadyExists = apperror.New(apperror.KindConflict, "user already has an employee profile")
	ErrUserNotFound  = apperror.New(apperror.KindNotFound, "user not found")
	ErrRoleMismatch  = apperror.New(apperror.KindValidation, "user must have the EMPLOYEE or ADMIN role")
	ErrInvalidSalary = apperror.New(apperror.KindInvalidAmount, "salary must be positive")
)

// Employee is the staff profile that validates reservations and receives payments.
type Employee struct {
	ID        int64
	UserID    int64
	Email     string
	FirstName string
	LastName  string
	Salary    money.Amount
	HiredOn   time.Time
	CreatedAt time.Time
}

type Filter struct {
	Name      string
	Page      int
	PageSize  int
	SortOrder string
}
