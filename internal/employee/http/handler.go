package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/response"
)

type Handler struct {
	service employee.Service
}

func NewHandler(service employee.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	// The binding tag already checked the layout.
	hiredOn, _ := time.Parse(dateLayout, req.HiredOn)

	created, err := h.service.Create(c.Request.Context(), employee.CreateRequest{
		UserID:  req.UserID,
		Salary:  req.Salary,
		HiredOn: hiredOn,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := NewEmployeeResponse(created)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := NewEmployeeResponse(found)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) List(c *gin.Context) {
	var req ListEmployeesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	employees, total, err := h.service.List(c.Request.Context(), employee.Filter{
		Name:      req.Name,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: strings.ToUpper(req.SortOrder),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		if items[i], err = NewEmployeeResponse(e); err != nil {
			response.Error(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.ListParams, total))
}
