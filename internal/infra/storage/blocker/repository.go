package blocker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashService/pkg/psqlbuilder"
)

const table = "blockers"

// Repository репозиторий периодов закрытия мойки
type Repository struct {
	db  dbmetrics.DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{db: db, loc: loc}
}

// Create сохраняет блокировку
func (r *Repository) Create(ctx context.Context, b *domain.Blocker) (*domain.Blocker, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "start_time", "end_time", "comment").
		Values(b.ID, b.StartTime, b.EndTime, b.Comment).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return b, nil
}

// GetByID получает блокировку по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Blocker, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "start_time", "end_time", "comment", "created_at").
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := r.scan(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlockerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan blocker: %v", ErrScanRow, err)
	}

	return b, nil
}

// List получает блокировки, пересекающие период [from, to].
// Нулевые границы не ограничивают выборку.
func (r *Repository) List(ctx context.Context, from, to *time.Time) ([]*domain.Blocker, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "start_time", "end_time", "comment", "created_at").
		From(table).
		OrderBy("start_time ASC")
	if from != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_time": *from})
	}
	if to != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_time": *to})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blockers := make([]*domain.Blocker, 0)
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		blockers = append(blockers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return blockers, nil
}

// Delete удаляет блокировку
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockerNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scan(row rowScanner) (*domain.Blocker, error) {
	var b domain.Blocker
	var comment sql.NullString

	if err := row.Scan(&b.ID, &b.StartTime, &b.EndTime, &comment, &b.CreatedAt); err != nil {
		return nil, err
	}

	b.StartTime = b.StartTime.In(r.loc)
	b.EndTime = b.EndTime.In(r.loc)
	if comment.Valid {
		b.Comment = &comment.String
	}

	return &b, nil
}
