package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashService/pkg/psqlbuilder"
)

const table = "reservations"

var columns = []string{
	"id",
	"user_id",
	"company_id",
	"vehicle_plate_number",
	"location",
	"services",
	"private",
	"state",
	"start_time",
	"end_time",
	"date",
	"time_requirement",
	"comment",
	"carwash_comment",
	"created_by_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий резерваций в PostgreSQL
type Repository struct {
	db  DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория резерваций.
// loc задает часовой пояс календарных дат.
func NewRepository(db DBExecutor, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.Local
	}
	return &Repository{db: db, loc: loc}
}

// Create сохраняет новую резервацию.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"id",
			"user_id",
			"company_id",
			"vehicle_plate_number",
			"location",
			"services",
			"private",
			"state",
			"start_time",
			"end_time",
			"date",
			"time_requirement",
			"comment",
			"carwash_comment",
			"created_by_id",
		).
		Values(
			res.ID,
			res.UserID,
			res.CompanyID,
			res.VehiclePlateNumber,
			res.Location,
			pq.Array(servicesToInts(res.Services)),
			res.Private,
			int(res.State),
			res.StartTime,
			res.EndTime,
			r.dateString(res.Date),
			res.TimeRequirementMinutes,
			res.Comment,
			res.CarwashComment,
			res.CreatedByID,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return res, nil
}

// Update перезаписывает изменяемые поля резервации
func (r *Repository) Update(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("vehicle_plate_number", res.VehiclePlateNumber).
		Set("location", res.Location).
		Set("services", pq.Array(servicesToInts(res.Services))).
		Set("private", res.Private).
		Set("state", int(res.State)).
		Set("start_time", res.StartTime).
		Set("end_time", res.EndTime).
		Set("date", r.dateString(res.Date)).
		Set("time_requirement", res.TimeRequirementMinutes).
		Set("comment", res.Comment).
		Set("carwash_comment", res.CarwashComment).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return res, nil
}

// UpdateState меняет состояние резервации
func (r *Repository) UpdateState(ctx context.Context, id string, state domain.State) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("state", int(state)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateState - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateState", query, args)
}

// GetByID получает резервацию по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции блокируем строку для редактирования
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetLatestByUser получает самую новую резервацию пользователя
func (r *Repository) GetLatestByUser(ctx context.Context, userID string) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByUser - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLatestByUser - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// List получает резервации по фильтру, новые первыми
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.applyFilter(psqlbuilder.Select(columns...).From(table), filter).
		OrderBy("start_time DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := r.scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

// Delete удаляет резервацию, освобождая её время в слоте и дне
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Delete", query, args)
}

// CountActiveByUser считает резервации пользователя, которые еще не выполнены
func (r *Repository) CountActiveByUser(ctx context.Context, userID string, excludeID *string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.NotEq{"state": int(domain.StateDone)})
	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveByUser - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveByUser - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// SumTimeRequirement суммирует время резерваций, подходящих под фильтр
func (r *Repository) SumTimeRequirement(ctx context.Context, filter domain.ReservationFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.applyFilter(psqlbuilder.Select("COALESCE(SUM(time_requirement), 0)").From(table), filter).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: SumTimeRequirement - build select query: %v", ErrBuildQuery, err)
	}

	var sum int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("%w: SumTimeRequirement - scan sum: %w", ErrScanRow, err)
	}

	return sum, nil
}

// SumByDate суммирует время резерваций по календарным дням
func (r *Repository) SumByDate(ctx context.Context, filter domain.ReservationFilter) ([]domain.DateTotal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.applyFilter(psqlbuilder.Select("date", "SUM(time_requirement)").From(table), filter).
		GroupBy("date").
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: SumByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SumByDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	totals := make([]domain.DateTotal, 0)
	for rows.Next() {
		var date time.Time
		var minutes int
		if err := rows.Scan(&date, &minutes); err != nil {
			return nil, fmt.Errorf("%w: SumByDate - scan row: %w", ErrScanRow, err)
		}
		totals = append(totals, domain.DateTotal{Date: r.localDate(date), Minutes: minutes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: SumByDate - rows error: %w", ErrScanRow, err)
	}

	return totals, nil
}

// SumByStartTime суммирует время резерваций по слотам (моментам начала)
func (r *Repository) SumByStartTime(ctx context.Context, filter domain.ReservationFilter) ([]domain.StartTimeTotal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.applyFilter(psqlbuilder.Select("start_time", "SUM(time_requirement)").From(table), filter).
		GroupBy("start_time").
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: SumByStartTime - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SumByStartTime - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	totals := make([]domain.StartTimeTotal, 0)
	for rows.Next() {
		var start time.Time
		var minutes int
		if err := rows.Scan(&start, &minutes); err != nil {
			return nil, fmt.Errorf("%w: SumByStartTime - scan row: %w", ErrScanRow, err)
		}
		totals = append(totals, domain.StartTimeTotal{StartTime: start.In(r.loc), Minutes: minutes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: SumByStartTime - rows error: %w", ErrScanRow, err)
	}

	return totals, nil
}

// LockDate берет транзакционную advisory блокировку на календарный день.
// Все проверки вместимости дня и его слотов выполняются под этой блокировкой.
// Вне транзакции ничего не делает.
func (r *Repository) LockDate(ctx context.Context, date time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", lockKey(r.dateString(date)))).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockDate - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockDate - execute: %w", ErrExecQuery, err)
	}

	return nil
}

// applyFilter добавляет условия фильтра к запросу
func (r *Repository) applyFilter(b squirrel.SelectBuilder, f domain.ReservationFilter) squirrel.SelectBuilder {
	if f.CompanyID != nil {
		b = b.Where(squirrel.Eq{"company_id": *f.CompanyID})
	}
	if f.UserID != nil {
		b = b.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	if f.Date != nil {
		b = b.Where(squirrel.Eq{"date": r.dateString(*f.Date)})
	}
	if f.StartTime != nil {
		b = b.Where(squirrel.Eq{"start_time": *f.StartTime})
	}
	if f.StartFrom != nil {
		b = b.Where(squirrel.GtOrEq{"start_time": *f.StartFrom})
	}
	if f.StartTo != nil {
		b = b.Where(squirrel.LtOrEq{"start_time": *f.StartTo})
	}
	if f.EndFrom != nil {
		b = b.Where(squirrel.GtOrEq{"end_time": *f.EndFrom})
	}
	if f.ExcludeID != nil {
		b = b.Where(squirrel.NotEq{"id": *f.ExcludeID})
	}
	return b
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res      domain.Reservation
		services pq.Int64Array
		state    int
		date     time.Time
		comment  sql.NullString
		carwash  sql.NullString
	)

	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.CompanyID,
		&res.VehiclePlateNumber,
		&res.Location,
		&services,
		&res.Private,
		&state,
		&res.StartTime,
		&res.EndTime,
		&date,
		&res.TimeRequirementMinutes,
		&comment,
		&carwash,
		&res.CreatedByID,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Services = make([]domain.ServiceType, 0, len(services))
	for _, s := range services {
		res.Services = append(res.Services, domain.ServiceType(s))
	}
	res.State = domain.State(state)
	res.StartTime = res.StartTime.In(r.loc)
	res.EndTime = res.EndTime.In(r.loc)
	res.Date = r.localDate(date)
	if comment.Valid {
		res.Comment = &comment.String
	}
	if carwash.Valid {
		res.CarwashComment = &carwash.String
	}

	return &res, nil
}

// dateString форматирует календарный день для колонки DATE
func (r *Repository) dateString(t time.Time) string {
	return t.In(r.loc).Format(domain.DateFormat)
}

// localDate переводит значение колонки DATE в полночь часового пояса каталога
func (r *Repository) localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc)
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

func lockKey(date string) string {
	return table + ":" + date
}

func servicesToInts(services []domain.ServiceType) []int64 {
	out := make([]int64, 0, len(services))
	for _, s := range services {
		out = append(out, int64(s))
	}
	return out
}
