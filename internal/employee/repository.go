package employee

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
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	List(ctx context.Context, filter Filter) ([]*Employee, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectEmployees() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("e.id", "e.user_id", "u.email", "u.first_name", "u.last_name",
			"e.salary_cents", "e.hired_on", "e.created_at").
		From("public.employees e").
		Join("public.users u ON u.id = e.user_id")
}

func scanEmployee(row pgx.Row, extra ...any) (*Employee, error) {
	var e Employee
	dest := []any{&e.ID, &e.UserID, &e.Email, &e.FirstName, &e.LastName, &e.Salary, &e.HiredOn, &e.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgxRepository) Create(ctx context.Context, e *Employee) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.employees").
		Columns("user_id", "salary_cents", "hired_on").
		Values(e.UserID, e.Salary, e.HiredOn).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create employee query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return ErrAlreadyExists
			case pgerrcode.ForeignKeyViolation:
				return ErrUserNotFound
			}
		}
		return fmt.Errorf("create employee failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Eq) (*Employee, error) {
	query, args, err := selectEmployees().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get employee query failed: %w", err)
	}

	e, err := scanEmployee(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get employee failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Employee, error) {
	return r.getOne(ctx, squirrel.Eq{"e.id": id})
}

func (r *pgxRepository) GetByUserID(ctx context.Context, userID int64) (*Employee, error) {
	return r.getOne(ctx, squirrel.Eq{"e.user_id": userID})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Employee, int, error) {
	query := selectEmployees().Column("count(*) OVER() AS total_count")

	if filter.Name != "" {
		pattern := "%" + filter.Name + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
		})
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy("e.hired_on "+orderDir, "e.id "+orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list employees query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees failed: %w", err)
	}
	defer rows.Close()

	var employees []*Employee
	var total int
	for rows.Next() {
		e, err := scanEmployee(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan employee failed: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate employees failed: %w", err)
	}

	return employees, total, nil
}
