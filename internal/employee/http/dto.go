package http

import (
	"time"

	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/money"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/response"
)

const dateLayout = "2006-01-02"

type CreateEmployeeRequest struct {
	UserID  int64        `json:"user_id" binding:"required,min=1"`
	Salary  money.Amount `json:"salary" binding:"required"`
	HiredOn string       `json:"hired_on" binding:"required,datetime=2006-01-02"`
}

func (r *CreateEmployeeRequest) Validate() error {
	if r.Salary <= 0 {
		return employee.ErrInvalidSalary
	}
	return nil
}

type ListEmployeesRequest struct {
	request.ListParams
	Name string `form:"name"`
}

type EmployeeResponse struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Salary    money.Amount `json:"salary"`
	HiredOn   string       `json:"hired_on" copier:"-"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewEmployeeResponse(e *employee.Employee) (EmployeeResponse, error) {
	resp, err := response.Map[EmployeeResponse](e)
	if err != nil {
		return resp, err
	}
	resp.HiredOn = e.HiredOn.Format(dateLayout)
	return resp, nil
}
