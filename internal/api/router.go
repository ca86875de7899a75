package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/client"
	clientHttp "github.com/nekogravitycat/hotel-management-backend/internal/client/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	employeeHttp "github.com/nekogravitycat/hotel-management-backend/internal/employee/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	invoiceHttp "github.com/nekogravitycat/hotel-management-backend/internal/invoice/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	paymentHttp "github.com/nekogravitycat/hotel-management-backend/internal/payment/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
	reservationHttp "github.com/nekogravitycat/hotel-management-backend/internal/reservation/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
	roomHttp "github.com/nekogravitycat/hotel-management-backend/internal/room/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/roomtype"
	roomtypeHttp "github.com/nekogravitycat/hotel-management-backend/internal/roomtype/http"
	"github.com/nekogravitycat/hotel-management-backend/internal/user"
	userHttp "github.com/nekogravitycat/hotel-management-backend/internal/user/http"
)

// Config carries everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	JWTManager *auth.JWTManager
	// RateLimit guards the auth endpoints. Nil disables it.
	RateLimit gin.HandlerFunc

	UserService        user.Service
	ClientService      client.Service
	EmployeeService    employee.Service
	RoomTypeService    roomtype.Service
	RoomService        room.Service
	ReservationService reservation.Service
	PaymentService     payment.Service
	InvoiceService     invoice.Service
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: tags the request with an id and logs the outcome.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Dashboard dev server
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader, "Retry-After"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// staffMiddleware: ADMIN or EMPLOYEE.
	staffMiddleware := auth.RequireStaff()
	// adminMiddleware: ADMIN only.
	adminMiddleware := auth.RequireRole(auth.RoleAdmin)

	rateLimit := cfg.RateLimit
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	clientHandler := clientHttp.NewHandler(cfg.ClientService)
	employeeHandler := employeeHttp.NewHandler(cfg.EmployeeService)
	roomTypeHandler := roomtypeHttp.NewHandler(cfg.RoomTypeService)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService)
	paymentHandler := paymentHttp.NewHandler(cfg.PaymentService)
	invoiceHandler := invoiceHttp.NewHandler(cfg.InvoiceService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware, rateLimit)
		clientHttp.RegisterRoutes(v1, clientHandler, authMiddleware, staffMiddleware)
		employeeHttp.RegisterRoutes(v1, employeeHandler, authMiddleware, staffMiddleware, adminMiddleware)
		roomtypeHttp.RegisterRoutes(v1, roomTypeHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, staffMiddleware)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware, staffMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler, authMiddleware, staffMiddleware)
		invoiceHttp.RegisterRoutes(v1, invoiceHandler, authMiddleware, staffMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
