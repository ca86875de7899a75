package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/request"
)

func TestNewPageResponse(t *testing.T) {
	tests := []struct {
		name      string
		params    request.ListParams
		total     int
		wantPages int
	}{
		{"empty", request.ListParams{Page: 1, PageSize: 20}, 0, 0},
		{"partial page", request.ListParams{Page: 1, PageSize: 20}, 5, 1},
		{"exact pages", request.ListParams{Page: 2, PageSize: 10}, 30, 3},
		{"remainder", request.ListParams{Page: 3, PageSize: 10}, 31, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPageResponse[int](nil, tt.params, tt.total)
			assert.NotNil(t, page.Items)
			assert.Equal(t, tt.params.Page, page.Page)
			assert.Equal(t, tt.params.PageSize, page.PageSize)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}

	body, err := json.Marshal(NewPageResponse[int](nil, request.ListParams{Page: 1, PageSize: 20}, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"page":1,"page_size":20,"total":0,"total_pages":0}`, string(body))
}

type source struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type target struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestMap(t *testing.T) {
	got, err := Map[target](&source{ID: 3, Name: "101"})
	require.NoError(t, err)
	assert.Equal(t, target{ID: 3, Name: "101"}, got)

	all, err := MapAll[target]([]*source{{ID: 1}, {ID: 2}})
	require.NoError(t, err)
	assert.Equal(t, []target{{ID: 1}, {ID: 2}}, all)

	_, err = Map[target](nil)
	assert.Error(t, err, "copier refuses a nil source")
}

func TestErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		code int
	}{
		{apperror.New(apperror.KindOverpayment, "too much"), http.StatusBadRequest},
		{apperror.New(apperror.KindConflict, "taken"), http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Error(c, tt.err)
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
	}
}
