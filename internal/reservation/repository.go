package reservation

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

// Repository persists reservations and their room links. Methods that write
// more than one row, or lock, must run inside db.TxManager.RunAtomic.
type Repository interface {
	// Insert writes the reservation row and one link per entry in r.Rooms,
	// filling in the generated ids.
	Insert(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id int64) (*Reservation, error)
	// LockByID takes a row lock on the reservation for the rest of the transaction.
	LockByID(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	// UpdateStatus sets the status. A nil validatedBy keeps the current value.
	UpdateStatus(ctx context.Context, id int64, status Status, validatedBy *int64) error
	Delete(ctx context.Context, id int64) error

	// LockRooms row-locks the given rooms in id order so concurrent bookings
	// of the same room run one after the other.
	LockRooms(ctx context.Context, roomIDs []int64) error
	// FindConflicts returns links of non-cancelled reservations on roomIDs
	// overlapping [start, end] with inclusive bounds. excludeID 0 excludes nothing.
	FindConflicts(ctx context.Context, roomIDs []int64, start, end time.Time, excludeID int64) ([]Conflict, error)
	// RoomsHeldByOthers returns the subset of roomIDs linked to a CONFIRMED
	// reservation other than excludeID.
	RoomsHeldByOthers(ctx context.Context, roomIDs []int64, excludeID int64) ([]int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			switch pgErr.TableName {
			case "reservation_rooms":
				return ErrRoomNotFound
			case "payments":
				return ErrHasPayments
			}
			if pgErr.ConstraintName == "reservations_validated_by_fkey" {
				return ErrEmployeeNotFound
			}
			return ErrClientNotFound
		case pgerrcode.CheckViolation:
			return ErrInvalidRange
		}
	}
	return nil
}

func (r *pgxRepository) Insert(ctx context.Context, res *Reservation) error {
	conn := db.Conn(ctx, r.pool)

	query, args, err := psql.Insert("public.reservations").
		Columns("client_id", "date_start", "date_end", "status").
		Values(res.ClientID, res.Start, res.End, res.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reservation query failed: %w", err)
	}
	if err := conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert reservation failed: %w", err)
	}

	links := psql.Insert("public.reservation_rooms").
		Columns("reservation_id", "room_id").
		Suffix("RETURNING id, room_id")
	for _, l := range res.Rooms {
		links = links.Values(res.ID, l.RoomID)
	}
	query, args, err = links.ToSql()
	if err != nil {
		return fmt.Errorf("build insert reservation rooms query failed: %w", err)
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert reservation rooms failed: %w", err)
	}
	defer rows.Close()

	linkIDs := make(map[int64]int64, len(res.Rooms))
	for rows.Next() {
		var id, roomID int64
		if err := rows.Scan(&id, &roomID); err != nil {
			return fmt.Errorf("scan reservation room failed: %w", err)
		}
		linkIDs[roomID] = id
	}
	if err := rows.Err(); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert reservation rooms failed: %w", err)
	}

	for i := range res.Rooms {
		res.Rooms[i].ID = linkIDs[res.Rooms[i].RoomID]
	}
	return nil
}

func selectReservations() squirrel.SelectBuilder {
	return psql.Select("res.id", "res.client_id", "res.date_start", "res.date_end",
		"res.status", "res.validated_by", "res.created_at").
		From("public.reservations res")
}

func scanReservation(row pgx.Row, extra ...any) (*Reservation, error) {
	var res Reservation
	dest := []any{&res.ID, &res.ClientID, &res.Start, &res.End, &res.Status, &res.ValidatedBy, &res.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	conn := db.Conn(ctx, r.pool)

	query, args, err := selectReservations().Where(squirrel.Eq{"res.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	res, err := scanReservation(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}

	links, err := r.loadRooms(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	res.Rooms = links[id]

	if res.Payments, err = r.loadPayments(ctx, id); err != nil {
		return nil, err
	}

	var inv InvoiceLine
	err = conn.QueryRow(ctx,
		`SELECT id, total_cents, created_at FROM public.invoices WHERE reservation_id = $1`, id,
	).Scan(&inv.ID, &inv.Total, &inv.CreatedAt)
	switch {
	case err == nil:
		res.Invoice = &inv
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get reservation invoice failed: %w", err)
	}

	return res, nil
}

func (r *pgxRepository) loadRooms(ctx context.Context, reservationIDs []int64) (map[int64][]RoomLink, error) {
	out := make(map[int64][]RoomLink, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return out, nil
	}

	query, args, err := psql.Select("rr.reservation_id", "rr.id", "rr.room_id", "r.number", "r.floor", "r.price_cents").
		From("public.reservation_rooms rr").
		Join("public.rooms r ON r.id = rr.room_id").
		Where(squirrel.Eq{"rr.reservation_id": reservationIDs}).
		OrderBy("rr.reservation_id", "r.floor", "r.number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load reservation rooms query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load reservation rooms failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resID int64
		var l RoomLink
		if err := rows.Scan(&resID, &l.ID, &l.RoomID, &l.Number, &l.Floor, &l.Price); err != nil {
			return nil, fmt.Errorf("scan reservation room failed: %w", err)
		}
		out[resID] = append(out[resID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rooms failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) loadPayments(ctx context.Context, reservationID int64) ([]PaymentLine, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, amount_cents, method, status
		FROM public.payments
		WHERE reservation_id = $1
		ORDER BY id
	`, reservationID)
	if err != nil {
		return nil, fmt.Errorf("load reservation payments failed: %w", err)
	}
	defer rows.Close()

	var lines []PaymentLine
	for rows.Next() {
		var p PaymentLine
		if err := rows.Scan(&p.ID, &p.Amount, &p.Method, &p.Status); err != nil {
			return nil, fmt.Errorf("scan reservation payment failed: %w", err)
		}
		lines = append(lines, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation payments failed: %w", err)
	}
	return lines, nil
}

func (r *pgxRepository) LockByID(ctx context.Context, id int64) error {
	var locked int64
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM public.reservations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock reservation failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	query := selectReservations().Column("count(*) OVER() AS total_count")

	if filter.ClientID != 0 {
		query = query.Where(squirrel.Eq{"res.client_id": filter.ClientID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"res.status": filter.Status})
	}
	if filter.RoomID != 0 {
		query = query.Where(squirrel.Expr(
			`EXISTS (SELECT 1 FROM public.reservation_rooms rr WHERE rr.reservation_id = res.id AND rr.room_id = ?)`,
			filter.RoomID))
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"res.date_end": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"res.date_start": *filter.To})
	}

	orderBy := "res.date_start"
	if filter.SortBy != "" {
		orderBy = "res." + filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy+" "+orderDir, "res.id DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var items []*Reservation
	var ids []int64
	var total int
	for rows.Next() {
		res, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		items = append(items, res)
		ids = append(ids, res.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reservations failed: %w", err)
	}
	rows.Close()

	links, err := r.loadRooms(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, res := range items {
		res.Rooms = links[res.ID]
	}

	return items, total, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id int64, status Status, validatedBy *int64) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE public.reservations
		SET status = $1, validated_by = COALESCE($2, validated_by)
		WHERE id = $3
	`, status, validatedBy, id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update reservation status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM public.reservations WHERE id = $1`, id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("delete reservation failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) LockRooms(ctx context.Context, roomIDs []int64) error {
	query, args, err := psql.Select("id").
		From("public.rooms").
		Where(squirrel.Eq{"id": roomIDs}).
		OrderBy("id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock rooms query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("lock rooms failed: %w", err)
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		locked++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock rooms failed: %w", err)
	}
	if locked != len(roomIDs) {
		return ErrRoomNotFound
	}
	return nil
}

func (r *pgxRepository) FindConflicts(ctx context.Context, roomIDs []int64, start, end time.Time, excludeID int64) ([]Conflict, error) {
	query := psql.Select("rr.room_id", "res.id", "res.date_start", "res.date_end").
		From("public.reservation_rooms rr").
		Join("public.reservations res ON res.id = rr.reservation_id").
		Where(squirrel.Eq{"rr.room_id": roomIDs}).
		Where(squirrel.NotEq{"res.status": StatusCancelled}).
		Where(squirrel.LtOrEq{"res.date_start": end}).
		Where(squirrel.GtOrEq{"res.date_end": start})
	if excludeID != 0 {
		query = query.Where(squirrel.NotEq{"res.id": excludeID})
	}

	sql, args, err := query.OrderBy("rr.room_id", "res.date_start").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find conflicts query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find conflicts failed: %w", err)
	}
	defer rows.Close()

	var conflicts []Conflict
	for rows.Next() {
		var c Conflict
		if err := rows.Scan(&c.RoomID, &c.ReservationID, &c.Start, &c.End); err != nil {
			return nil, fmt.Errorf("scan conflict failed: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflicts failed: %w", err)
	}
	return conflicts, nil
}

func (r *pgxRepository) RoomsHeldByOthers(ctx context.Context, roomIDs []int64, excludeID int64) ([]int64, error) {
	sql, args, err := psql.Select("DISTINCT rr.room_id").
		From("public.reservation_rooms rr").
		Join("public.reservations res ON res.id = rr.reservation_id").
		Where(squirrel.Eq{"rr.room_id": roomIDs}).
		Where(squirrel.Eq{"res.status": StatusConfirmed}).
		Where(squirrel.NotEq{"res.id": excludeID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rooms held query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("rooms held query failed: %w", err)
	}
	defer rows.Close()

	var held []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan held room failed: %w", err)
		}
		held = append(held, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate held rooms failed: %w", err)
	}
	return held, nil
}
