package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-management-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	GetByReservation(ctx context.Context, reservationID int64) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]*Invoice, int, error)
	Delete(ctx context.Context, id int64) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectInvoices() squirrel.SelectBuilder {
	return psql.Select("id", "reservation_id", "total_cents", "created_at").From("public.invoices")
}

func scanInvoice(row pgx.Row, extra ...any) (*Invoice, error) {
	var inv Invoice
	dest := []any{&inv.ID, &inv.ReservationID, &inv.Total, &inv.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *pgxRepository) Create(ctx context.Context, inv *Invoice) error {
	query, args, err := psql.Insert("public.invoices").
		Columns("reservation_id", "total_cents").
		Values(inv.ReservationID, inv.Total).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create invoice query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&inv.ID, &inv.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrAlreadyExists
			case pgerrcode.ForeignKeyViolation:
				return ErrReservationNotFound
			case pgerrcode.CheckViolation:
				return ErrInvalidAmount
			}
		}
		return fmt.Errorf("create invoice failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Invoice, error) {
	query, args, err := selectInvoices().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get invoice query failed: %w", err)
	}

	inv, err := scanInvoice(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invoice failed: %w", err)
	}
	return inv, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByReservation(ctx context.Context, reservationID int64) (*Invoice, error) {
	return r.getOne(ctx, squirrel.Eq{"reservation_id": reservationID})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Invoice, int, error) {
	query := selectInvoices().Column("count(*) OVER() AS total_count")

	if filter.ReservationID != 0 {
		query = query.Where(squirrel.Eq{"reservation_id": filter.ReservationID})
	}

	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy("created_at "+orderDir, "id "+orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list invoices query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices failed: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	var total int
	for rows.Next() {
		inv, err := scanInvoice(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice failed: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate invoices failed: %w", err)
	}
	return invoices, total, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM public.invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
