package payment

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
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	ListByReservation(ctx context.Context, reservationID int64) ([]*Payment, error)
	List(ctx context.Context, filter Filter) ([]*Payment, int, error)
	// Update writes amount, method, status, transaction ref and updated_at.
	Update(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id int64) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func selectPayments() squirrel.SelectBuilder {
	return psql.Select("id", "reservation_id", "amount_cents", "method", "status",
		"received_by", "transaction_ref", "created_at", "updated_at").
		From("public.payments")
}

func scanPayment(row pgx.Row, extra ...any) (*Payment, error) {
	var p Payment
	dest := []any{&p.ID, &p.ReservationID, &p.Amount, &p.Method, &p.Status,
		&p.ReceivedBy, &p.TransactionRef, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			if pgErr.ConstraintName == "payments_received_by_fkey" {
				return ErrEmployeeNotFound
			}
			return ErrReservationNotFound
		case pgerrcode.CheckViolation:
			return ErrInvalidAmount
		}
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Payment) error {
	query, args, err := psql.Insert("public.payments").
		Columns("reservation_id", "amount_cents", "method", "status", "received_by", "transaction_ref", "created_at", "updated_at").
		Values(p.ReservationID, p.Amount, p.Method, p.Status, p.ReceivedBy, p.TransactionRef, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create payment query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&p.ID); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create payment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Payment, error) {
	query, args, err := selectPayments().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment query failed: %w", err)
	}

	p, err := scanPayment(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment failed: %w", err)
	}
	return p, nil
}

func (r *pgxRepository) ListByReservation(ctx context.Context, reservationID int64) ([]*Payment, error) {
	query, args, err := selectPayments().
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reservation payments query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservation payments failed: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment failed: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments failed: %w", err)
	}
	return payments, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Payment, int, error) {
	query := selectPayments().Column("count(*) OVER() AS total_count")

	if filter.ReservationID != 0 {
		query = query.Where(squirrel.Eq{"reservation_id": filter.ReservationID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Method != "" {
		query = query.Where(squirrel.Eq{"method": filter.Method})
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
		return nil, 0, fmt.Errorf("build list payments query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments failed: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	var total int
	for rows.Next() {
		p, err := scanPayment(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment failed: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payments failed: %w", err)
	}
	return payments, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, p *Payment) error {
	query, args, err := psql.Update("public.payments").
		Set("amount_cents", p.Amount).
		Set("method", p.Method).
		Set("status", p.Status).
		Set("transaction_ref", p.TransactionRef).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update payment query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update payment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	ct, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM public.payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
