package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
)

var (
	owner    = &domain.User{ID: "u1", CompanyID: "microsoft"}
	coworker = &domain.User{ID: "u2", CompanyID: "microsoft"}
	admin    = &domain.User{ID: "a1", CompanyID: "microsoft", IsAdmin: true}
	operator = &domain.User{ID: "op", CompanyID: "carwash", IsOperatorAdmin: true}
)

type fixture struct {
	svc   *Service
	store *memory.ReservationStore
	tick  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{tick: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	f.store = memory.NewReservationStore(time.UTC).WithClock(func() time.Time {
		f.tick = f.tick.Add(time.Minute)
		return f.tick
	})
	f.svc = NewService(f.store, memory.NewTxManager(), logger.NewNop())
	f.svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) create(t *testing.T, user *domain.User, start time.Time, plate string) *domain.Reservation {
	t.Helper()
	res, err := f.store.Create(context.Background(), &domain.Reservation{
		UserID:                 user.ID,
		CompanyID:              user.CompanyID,
		VehiclePlateNumber:     plate,
		Location:               "M/-1/12",
		Services:               []domain.ServiceType{domain.ServiceExterior},
		StartTime:              start,
		EndTime:                start.Add(3 * time.Hour),
		Date:                   domain.DateOf(start),
		TimeRequirementMinutes: 12,
	})
	require.NoError(t, err)
	return res
}

func TestService_GetByID(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, owner, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "ABC123")

	for _, u := range []*domain.User{owner, admin, operator} {
		got, err := f.svc.GetByID(context.Background(), res.ID, u)
		require.NoError(t, err, u.ID)
		assert.Equal(t, res.ID, got.ID)
		assert.Equal(t, "2024-05-08T08:00:00Z", got.StartDate)
		assert.Equal(t, []int{0}, got.Services)
	}

	_, err := f.svc.GetByID(context.Background(), res.ID, coworker)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), "missing", owner)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestService_ListByUser(t *testing.T) {
	f := newFixture(t)
	f.create(t, owner, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "A")
	f.create(t, owner, time.Date(2024, 5, 9, 8, 0, 0, 0, time.UTC), "B")
	f.create(t, coworker, time.Date(2024, 5, 9, 8, 0, 0, 0, time.UTC), "C")

	resp, err := f.svc.ListByUser(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 2)
	assert.Equal(t, "B", resp.Reservations[0].VehiclePlateNumber)
	assert.Equal(t, "A", resp.Reservations[1].VehiclePlateNumber)

	resp, err = f.svc.ListByUser(context.Background(), &domain.User{ID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Reservations)
	assert.Empty(t, resp.Reservations)
}

func TestService_ListCompany(t *testing.T) {
	f := newFixture(t)
	f.create(t, owner, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "A")
	f.create(t, admin, time.Date(2024, 5, 8, 11, 0, 0, 0, time.UTC), "ADMIN")
	f.create(t, &domain.User{ID: "s1", CompanyID: "sap"}, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "SAP")

	resp, err := f.svc.ListCompany(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, "A", resp.Reservations[0].VehiclePlateNumber)

	_, err = f.svc.ListCompany(context.Background(), owner)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_ListObfuscated(t *testing.T) {
	f := newFixture(t)
	f.create(t, owner, time.Date(2024, 5, 9, 8, 0, 0, 0, time.UTC), "A")
	f.create(t, coworker, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "B")
	// закончилась до now
	f.create(t, owner, time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC), "OLD")
	// за горизонтом в 7 дней
	f.create(t, owner, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC), "FAR")

	resp, err := f.svc.ListObfuscated(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 2)
	assert.Equal(t, "2024-05-08T08:00:00Z", resp.Reservations[0].StartDate)
	assert.Equal(t, "2024-05-09T08:00:00Z", resp.Reservations[1].StartDate)
	assert.Equal(t, "microsoft", resp.Reservations[0].CompanyID)

	_, err = f.svc.ListObfuscated(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, owner, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "A")

	err := f.svc.Delete(context.Background(), res.ID, coworker)
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, f.svc.Delete(context.Background(), res.ID, operator))

	err = f.svc.Delete(context.Background(), res.ID, owner)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestService_UpdateState(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, owner, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "A")

	err := f.svc.UpdateState(context.Background(), res.ID, domain.StateDone, admin)
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = f.svc.UpdateState(context.Background(), res.ID, domain.State(42), operator)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = f.svc.UpdateState(context.Background(), "missing", domain.StateDone, operator)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	require.NoError(t, f.svc.UpdateState(context.Background(), res.ID, domain.StateDone, operator))
	stored, err := f.store.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, stored.State)
	assert.False(t, stored.IsActive())
}

func TestService_GetLastSettings(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetLastSettings(context.Background(), owner)
	assert.ErrorIs(t, err, ErrNoLastSettings)

	// Последней считается созданная позже, а не начинающаяся позже
	f.create(t, owner, time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC), "FIRST")
	f.create(t, owner, time.Date(2024, 5, 8, 8, 0, 0, 0, time.UTC), "SECOND")

	settings, err := f.svc.GetLastSettings(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "SECOND", settings.VehiclePlateNumber)
	assert.Equal(t, "M/-1/12", settings.Location)
}
