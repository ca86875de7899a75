package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-management-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error)
	Update(ctx context.Context, r *Room) error
	SetStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error

	// HasActiveReservations reports whether a PENDING or CONFIRMED reservation
	// ending at or after now is linked to the room.
	HasActiveReservations(ctx context.Context, id int64, now time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectRooms() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("r.id", "r.number", "r.floor", "r.price_cents", "r.status",
			"r.room_type_id", "rt.name", "r.created_at").
		From("public.rooms r").
		Join("public.room_types rt ON rt.id = r.room_type_id")
}

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var r Room
	dest := []any{&r.ID, &r.Number, &r.Floor, &r.Price, &r.Status, &r.RoomTypeID, &r.RoomTypeName, &r.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrNumberTaken
		case pgerrcode.ForeignKeyViolation:
			if pgErr.TableName == "rooms" {
				return ErrInvalidRoomType
			}
			return ErrHasHistory
		case pgerrcode.CheckViolation:
			return ErrInvalidPrice
		}
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, room *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.rooms").
		Columns("number", "floor", "price_cents", "status", "room_type_id").
		Values(room.Number, room.Floor, room.Price, room.Status, room.RoomTypeID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&room.ID, &room.CreatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Room, error) {
	query, args, err := selectRooms().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	room, err := scanRoom(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return room, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	query := selectRooms().Column("count(*) OVER() AS total_count")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"r.status": filter.Status})
	}
	if filter.RoomTypeID != 0 {
		query = query.Where(squirrel.Eq{"r.room_type_id": filter.RoomTypeID})
	}
	if filter.Floor != nil {
		query = query.Where(squirrel.Eq{"r.floor": *filter.Floor})
	}

	orderBy := "r.floor"
	if filter.SortBy != "" {
		orderBy = "r." + filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy+" "+orderDir, "r.number ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	var total int
	for rows.Next() {
		room, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rooms failed: %w", err)
	}

	return rooms, total, nil
}

func (r *pgxRepository) ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error) {
	query := selectRooms().Where(squirrel.Eq{"r.status": StatusAvailable})

	if filter.RoomTypeID != 0 {
		query = query.Where(squirrel.Eq{"r.room_type_id": filter.RoomTypeID})
	}
	if filter.Start != nil && filter.End != nil {
		// Same inclusive overlap test the reservation engine applies.
		query = query.Where(squirrel.Expr(`NOT EXISTS (
			SELECT 1 FROM public.reservation_rooms rr
			JOIN public.reservations res ON res.id = rr.reservation_id
			WHERE rr.room_id = r.id
			  AND res.status <> 'CANCELLED'
			  AND res.date_start <= ?
			  AND res.date_end >= ?)`, *filter.End, *filter.Start))
	}
	query = query.OrderBy("r.floor ASC", "r.number ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list available rooms query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list available rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available rooms failed: %w", err)
	}
	return rooms, nil
}

func (r *pgxRepository) Update(ctx context.Context, room *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.rooms").
		Set("number", room.Number).
		Set("floor", room.Floor).
		Set("price_cents", room.Price).
		Set("room_type_id", room.RoomTypeID).
		Where(squirrel.Eq{"id": room.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE public.rooms SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set room status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM public.rooms WHERE id = $1`, id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasActiveReservations(ctx context.Context, id int64, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM public.reservation_rooms rr
			JOIN public.reservations res ON res.id = rr.reservation_id
			WHERE rr.room_id = $1
			  AND res.status IN ('PENDING', 'CONFIRMED')
			  AND res.date_end >= $2
		)
	`

	var exists bool
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, id, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active reservations failed: %w", err)
	}
	return exists, nil
}
