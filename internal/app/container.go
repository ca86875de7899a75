package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/hotel-management-backend/internal/api"
	"github.com/nekogravitycat/hotel-management-backend/internal/auth"
	"github.com/nekogravitycat/hotel-management-backend/internal/client"
	"github.com/nekogravitycat/hotel-management-backend/internal/db"
	"github.com/nekogravitycat/hotel-management-backend/internal/employee"
	"github.com/nekogravitycat/hotel-management-backend/internal/event"
	"github.com/nekogravitycat/hotel-management-backend/internal/invoice"
	"github.com/nekogravitycat/hotel-management-backend/internal/payment"
	"github.com/nekogravitycat/hotel-management-backend/internal/pkg/clock"
	"github.com/nekogravitycat/hotel-management-backend/internal/reservation"
	"github.com/nekogravitycat/hotel-management-backend/internal/room"
	"github.com/nekogravitycat/hotel-management-backend/internal/roomtype"
	"github.com/nekogravitycat/hotel-management-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	TxMaxRetries int
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Events defaults to NopPublisher.
	Events event.Publisher
	// Redis enables rate limiting on the auth endpoints when set.
	Redis             *redis.Client
	RateLimitCapacity int
	RateLimitRefill   time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager

	UserService        user.Service
	ClientService      client.Service
	EmployeeService    employee.Service
	RoomTypeService    roomtype.Service
	RoomService        room.Service
	ReservationService reservation.Service
	PaymentService     payment.Service
	InvoiceService     invoice.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	events := cfg.Events
	if events == nil {
		events = event.NopPublisher{}
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	txManager := db.NewTxManager(cfg.DBPool, cfg.TxMaxRetries)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, clk)

	// Client Module
	clientRepo := client.NewPgxRepository(cfg.DBPool)
	clientService := client.NewService(clientRepo, userService)

	// Employee Module
	employeeRepo := employee.NewPgxRepository(cfg.DBPool)
	employeeService := employee.NewService(employeeRepo, userService)

	// RoomType Module
	roomTypeRepo := roomtype.NewPgxRepository(cfg.DBPool)
	roomTypeService := roomtype.NewService(roomTypeRepo)

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, roomTypeService, clk)

	// Reservation Module
	reservationRepo := reservation.NewPgxRepository(cfg.DBPool)
	reservationService := reservation.NewService(
		reservationRepo, txManager, clientService, employeeService, roomService, events,
	)

	// Payment Module
	paymentRepo := payment.NewPgxRepository(cfg.DBPool)
	paymentService := payment.NewService(
		paymentRepo, txManager, reservationService, employeeService, events, clk,
	)

	// Invoice Module
	invoiceRepo := invoice.NewPgxRepository(cfg.DBPool)
	invoiceService := invoice.NewService(invoiceRepo, txManager, reservationService, roomService, events)

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		JWTManager:         jwtManager,
		RateLimit:          api.RateLimit(cfg.Redis, cfg.RateLimitCapacity, cfg.RateLimitRefill),
		UserService:        userService,
		ClientService:      clientService,
		EmployeeService:    employeeService,
		RoomTypeService:    roomTypeService,
		RoomService:        roomService,
		ReservationService: reservationService,
		PaymentService:     paymentService,
		InvoiceService:     invoiceService,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:             router,
		JWTManager:         jwtManager,
		UserService:        userService,
		ClientService:      clientService,
		EmployeeService:    employeeService,
		RoomTypeService:    roomTypeService,
		RoomService:        roomService,
		ReservationService: reservationService,
		PaymentService:     paymentService,
		InvoiceService:     invoiceService,
	}
}

// NewEventPublisher connects to the broker when url is set and falls back to
// a NopPublisher otherwise. The returned close func is always safe to call.
func NewEventPublisher(url, exchange string) (event.Publisher, func(), error) {
	if url == "" {
		slog.Info("event publishing disabled")
		return event.NopPublisher{}, func() {}, nil
	}

	pub, err := event.NewAMQPPublisher(url, exchange)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	}, nil
}

// NewRedis returns nil when addr is empty, which disables rate limiting.
func NewRedis(ctx context.Context, addr, password string, dbIndex int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	return api.NewRedisClient(ctx, addr, password, dbIndex)
}
