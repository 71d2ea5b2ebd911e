package admit_reservation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
	"github.com/m04kA/SMC-CarWashService/internal/service/catalog"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
	"github.com/m04kA/SMC-CarWashService/pkg/metrics"
	"github.com/m04kA/SMC-CarWashService/pkg/ptr"
	"github.com/m04kA/SMC-CarWashService/pkg/txmanager"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

// понедельник, 07:00
var monday = time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)

// среда, день бронирований в тестах
var wednesday = time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	uc       *UseCase
	store    *memory.ReservationStore
	blockers *memory.BlockerStore
	users    *memory.UserDirectory
	catalog  *catalog.Catalog
	clock    *fixedClock
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithTx(t, memory.NewTxManager())
}

func newFixtureWithTx(t *testing.T, tx TransactionManager) *fixture {
	t.Helper()
	cat, err := catalog.New(
		[]domain.Slot{
			{StartHour: 8, EndHour: 11, Capacity: 12},
			{StartHour: 11, EndHour: 14, Capacity: 12},
			{StartHour: 14, EndHour: 17, Capacity: 11},
		},
		[]domain.CompanyLimit{
			{CompanyID: "carwash", Unlimited: true},
			{CompanyID: "microsoft", DailyLimit: 14},
			{CompanyID: "sap", DailyLimit: 16},
			{CompanyID: "graphisoft", DailyLimit: 5},
		},
		12,
		time.UTC,
	)
	require.NoError(t, err)

	log := logger.NewNop()
	store := memory.NewReservationStore(time.UTC)
	blockers := memory.NewBlockerStore()
	users := memory.NewUserDirectory(
		domain.User{ID: "operator", CompanyID: "carwash", IsOperatorAdmin: true},
		domain.User{ID: "ms-admin", CompanyID: "microsoft", IsAdmin: true},
		domain.User{ID: "ms-1", CompanyID: "microsoft"},
		domain.User{ID: "ms-2", CompanyID: "microsoft"},
		domain.User{ID: "sap-1", CompanyID: "sap"},
		domain.User{ID: "stranger", CompanyID: "oracle"},
	)
	clock := &fixedClock{now: monday}
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	calc := availability.NewCalculator(store, blockers, cat, log)
	uc := NewUseCase(store, calc, cat, users, tx, m, domain.DefaultUserConcurrentLimit, log).
		WithTimeProvider(clock)

	return &fixture{
		uc:       uc,
		store:    store,
		blockers: blockers,
		users:    users,
		catalog:  cat,
		clock:    clock,
		metrics:  m,
	}
}

func (f *fixture) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := f.users.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

// seed кладет резервации напрямую в хранилище, минуя допуск
func (f *fixture) seed(t *testing.T, userID, companyID string, start time.Time, count int, services ...domain.ServiceType) []*domain.Reservation {
	t.Helper()
	if len(services) == 0 {
		services = []domain.ServiceType{domain.ServiceExterior}
	}
	slot, err := f.catalog.FindSlotByStartHour(start.Hour())
	require.NoError(t, err)

	out := make([]*domain.Reservation, 0, count)
	for i := 0; i < count; i++ {
		res, err := f.store.Create(context.Background(), &domain.Reservation{
			UserID:                 userID,
			CompanyID:              companyID,
			Services:               services,
			StartTime:              start,
			EndTime:                f.catalog.SlotEnd(start, slot),
			Date:                   f.catalog.DateOf(start),
			TimeRequirementMinutes: f.catalog.TimeRequirement(services),
			State:                  domain.StateDone,
		})
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func (f *fixture) admit(t *testing.T, acting string, start time.Time, services ...domain.ServiceType) (*Response, error) {
	t.Helper()
	if len(services) == 0 {
		services = []domain.ServiceType{domain.ServiceExterior}
	}
	return f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, acting),
		Services:   services,
		StartTime:  start,
	})
}

func TestExecute_AdmitsAndDerivesFields(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActingUser:         f.user(t, "ms-1"),
		Services:           []domain.ServiceType{domain.ServiceExterior, domain.ServiceInterior},
		StartTime:          at(wednesday, 11),
		VehiclePlateNumber: " abc123 ",
	})
	require.NoError(t, err)
	require.True(t, resp.Created)

	res := resp.Reservation
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "ms-1", res.UserID)
	assert.Equal(t, "ms-1", res.CreatedByID)
	assert.Equal(t, "microsoft", res.CompanyID)
	assert.Equal(t, "ABC123", res.VehiclePlateNumber)
	assert.False(t, res.Private)
	assert.Equal(t, domain.StateSubmittedNotActual, res.State)
	assert.Equal(t, at(wednesday, 14), res.EndTime)
	assert.Equal(t, wednesday, res.Date)
	assert.Equal(t, 12, res.TimeRequirementMinutes)

	stored, err := f.store.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.StartTime, stored.StartTime)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionDecisions.WithLabelValues("test", "admitted", "")))
}

// Слот 8-11 заполнен 12 мойками, дневной лимит компании еще не исчерпан
func TestExecute_SlotCapacityMet(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ms-2", "microsoft", at(wednesday, 8), 12)

	_, err := f.admit(t, "ms-1", at(wednesday, 8))

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.ErrorIs(t, err, ErrSlotCapacityMet)
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, "slot_capacity_met", rejection.Code())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionDecisions.WithLabelValues("test", "rejected", "slot_capacity_met")))

	// Соседний слот того же дня свободен
	_, err = f.admit(t, "ms-1", at(wednesday, 11))
	assert.NoError(t, err)
}

func TestExecute_SlotCapacityPooledAcrossCompanies(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ms-2", "microsoft", at(wednesday, 14), 6)
	f.seed(t, "x", "graphisoft", at(wednesday, 14), 5)

	_, err := f.admit(t, "sap-1", at(wednesday, 14))
	assert.ErrorIs(t, err, ErrSlotCapacityMet)
}

func TestExecute_ConcurrentLimitMet(t *testing.T) {
	f := newFixture(t)

	_, err := f.admit(t, "ms-1", at(wednesday, 8))
	require.NoError(t, err)
	_, err = f.admit(t, "ms-1", at(wednesday, 11))
	require.NoError(t, err)

	_, err = f.admit(t, "ms-1", at(wednesday, 14))
	assert.ErrorIs(t, err, ErrConcurrentLimitMet)
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestExecute_ConcurrentLimitIgnoresDone(t *testing.T) {
	f := newFixture(t)
	// seed создает выполненные резервации
	f.seed(t, "ms-1", "microsoft", at(wednesday, 8), 3)

	_, err := f.admit(t, "ms-1", at(wednesday, 11))
	assert.NoError(t, err)
}

func TestExecute_AdminExemptFromConcurrentLimit(t *testing.T) {
	f := newFixture(t)

	for _, hour := range []int{8, 11, 14} {
		_, err := f.admit(t, "ms-admin", at(wednesday, hour))
		require.NoError(t, err)
	}
}

func TestExecute_AdminNotExemptFromCapacity(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ms-2", "microsoft", at(wednesday, 8), 12)

	_, err := f.admit(t, "ms-admin", at(wednesday, 8))
	assert.ErrorIs(t, err, ErrSlotCapacityMet)
}

func TestExecute_CarpetDoublesRequirement(t *testing.T) {
	f := newFixture(t)

	resp, err := f.admit(t, "ms-1", at(wednesday, 8), domain.ServiceCarpet)
	require.NoError(t, err)
	assert.Equal(t, 24, resp.Reservation.TimeRequirementMinutes)
}

func TestExecute_CarpetDoesNotFitLastUnit(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ms-2", "microsoft", at(wednesday, 8), 11)

	_, err := f.admit(t, "sap-1", at(wednesday, 8), domain.ServiceCarpet)
	assert.ErrorIs(t, err, ErrSlotCapacityMet)

	// Одна обычная мойка ровно заполняет слот и допускается
	_, err = f.admit(t, "sap-1", at(wednesday, 8))
	assert.NoError(t, err)
}

func TestExecute_DayCapacityMet(t *testing.T) {
	f := newFixture(t)
	// graphisoft: лимит 5 моек в день
	f.seed(t, "x", "graphisoft", at(wednesday, 8), 3)
	f.seed(t, "x", "graphisoft", at(wednesday, 11), 2)
	f.users.Put(domain.User{ID: "gs-1", CompanyID: "graphisoft"})

	_, err := f.admit(t, "gs-1", at(wednesday, 14))
	assert.ErrorIs(t, err, ErrDayCapacityMet)

	// Другой день свободен
	_, err = f.admit(t, "gs-1", at(wednesday.AddDate(0, 0, 1), 14))
	assert.NoError(t, err)
}

func TestExecute_DayCapacityExactFitAccepted(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "x", "graphisoft", at(wednesday, 8), 4)
	f.users.Put(domain.User{ID: "gs-1", CompanyID: "graphisoft"})

	_, err := f.admit(t, "gs-1", at(wednesday, 14))
	require.NoError(t, err)

	f.users.Put(domain.User{ID: "gs-2", CompanyID: "graphisoft"})
	_, err = f.admit(t, "gs-2", at(wednesday, 14))
	assert.ErrorIs(t, err, ErrDayCapacityMet)
}

func TestExecute_TodayRemainingCapacity(t *testing.T) {
	f := newFixture(t)
	today := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	f.clock.now = time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC)

	// Осталось 12+11=23 мойки, 22 уже заняты другими компаниями
	f.seed(t, "x", "carwash", at(today, 11), 12)
	f.seed(t, "x", "carwash", at(today, 14), 10)

	_, err := f.admit(t, "ms-1", at(today, 14))
	require.NoError(t, err)

	_, err = f.admit(t, "sap-1", at(today, 14))
	assert.ErrorIs(t, err, ErrDayCapacityMet)
}

func TestExecute_PastDate(t *testing.T) {
	f := newFixture(t)
	yesterday := monday.AddDate(0, 0, -1)

	_, err := f.admit(t, "ms-1", at(yesterday, 8))
	assert.ErrorIs(t, err, ErrPastDate)
	assert.ErrorIs(t, err, ErrValidation)

	// Слот сегодня уже начался
	f.clock.now = time.Date(2024, 5, 6, 8, 30, 0, 0, time.UTC)
	_, err = f.admit(t, "ms-1", at(monday, 8))
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestExecute_PastDateProperty(t *testing.T) {
	f := newFixture(t)
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		now := monday.Add(time.Duration(rnd.Intn(60*24*30)) * time.Minute)
		f.clock.now = now
		start := now.Add(-time.Duration(1+rnd.Intn(60*24*10)) * time.Minute)
		start = time.Date(start.Year(), start.Month(), start.Day(), []int{8, 11, 14}[rnd.Intn(3)], 0, 0, 0, time.UTC)
		if !start.Before(now) {
			start = start.AddDate(0, 0, -1)
		}

		_, err := f.admit(t, "ms-admin", start)
		require.ErrorIs(t, err, ErrPastDate, "now=%s start=%s", now, start)
	}
}

func TestExecute_NotASlotProperty(t *testing.T) {
	f := newFixture(t)
	rnd := rand.New(rand.NewSource(7))
	slotHours := map[int]bool{8: true, 11: true, 14: true}

	for i := 0; i < 200; i++ {
		hour := rnd.Intn(24)
		if slotHours[hour] {
			continue
		}
		_, err := f.admit(t, "operator", at(wednesday, hour))
		require.ErrorIs(t, err, ErrNotASlot, "hour=%d", hour)
	}
}

func TestExecute_ExplicitEnd(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "ms-1"),
		Services:   []domain.ServiceType{domain.ServiceExterior},
		StartTime:  at(wednesday, 8),
		End:        ExplicitEnd{At: at(wednesday, 11)},
	})
	require.NoError(t, err)
	assert.Equal(t, at(wednesday, 11), resp.Reservation.EndTime)

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "ms-1"),
		Services:   []domain.ServiceType{domain.ServiceExterior},
		StartTime:  at(wednesday, 8),
		End:        ExplicitEnd{At: at(wednesday, 14)},
	})
	assert.ErrorIs(t, err, ErrNotASlot)

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "ms-1"),
		Services:   []domain.ServiceType{domain.ServiceExterior},
		StartTime:  at(wednesday, 8),
		End:        ExplicitEnd{At: at(wednesday.AddDate(0, 0, 1), 11)},
	})
	assert.ErrorIs(t, err, ErrCrossDayRange)
}

func TestExecute_NoServiceSelected(t *testing.T) {
	f := newFixture(t)

	// Пустой список услуг проверяется раньше даты в прошлом
	_, err := f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "ms-1"),
		StartTime:  at(monday.AddDate(0, 0, -1), 8),
	})
	assert.ErrorIs(t, err, ErrNoServiceSelected)
}

func TestExecute_InvalidService(t *testing.T) {
	f := newFixture(t)
	_, err := f.admit(t, "ms-1", at(wednesday, 8), domain.ServiceType(99))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_Blocked(t *testing.T) {
	f := newFixture(t)
	_, err := f.blockers.Create(context.Background(), &domain.Blocker{
		StartTime: wednesday,
		EndTime:   domain.EndOfDay(wednesday),
	})
	require.NoError(t, err)

	_, err = f.admit(t, "operator", at(wednesday, 11))
	assert.ErrorIs(t, err, ErrBlocked)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExecute_ForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "ms-1"),
		UserID:     "ms-2",
		Services:   []domain.ServiceType{domain.ServiceExterior},
		StartTime:  at(wednesday, 8),
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestExecute_AdminActsForOtherUser(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "operator"),
		UserID:     "sap-1",
		Services:   []domain.ServiceType{domain.ServiceExterior},
		StartTime:  at(wednesday, 8),
	})
	require.NoError(t, err)
	assert.Equal(t, "sap-1", resp.Reservation.UserID)
	assert.Equal(t, "sap", resp.Reservation.CompanyID)
	assert.Equal(t, "operator", resp.Reservation.CreatedByID)

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser: f.user(t, "operator"),
		UserID:     "ghost",
		Services:   []domain.ServiceType{domain.ServiceExterior},
		StartTime:  at(wednesday, 8),
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecute_UnknownCompany(t *testing.T) {
	f := newFixture(t)
	_, err := f.admit(t, "stranger", at(wednesday, 8))
	assert.ErrorIs(t, err, ErrUnknownCompany)
}

func TestExecute_OperatorBypassesCapacity(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ms-2", "microsoft", at(wednesday, 8), 12)

	resp, err := f.admit(t, "operator", at(wednesday, 8))
	require.NoError(t, err)
	assert.Equal(t, "carwash", resp.Reservation.CompanyID)

	// Лимит одновременных резерваций на оператора тоже не действует
	for i := 0; i < 3; i++ {
		_, err := f.admit(t, "operator", at(wednesday, 8))
		require.NoError(t, err)
	}
}

func TestExecute_EditExcludesOwnRequirement(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "ms-2", "microsoft", at(wednesday, 8), 11)

	resp, err := f.admit(t, "sap-1", at(wednesday, 8))
	require.NoError(t, err)
	id := resp.Reservation.ID

	// Слот заполнен, но редактирование не учитывает саму резервацию
	edited, err := f.uc.Execute(context.Background(), &Request{
		ActingUser:    f.user(t, "sap-1"),
		ReservationID: id,
		Services:      []domain.ServiceType{domain.ServiceInterior},
		StartTime:     at(wednesday, 8),
		Comment:       ptr.Ptr("near the entrance"),
	})
	require.NoError(t, err)
	assert.False(t, edited.Created)
	assert.Equal(t, id, edited.Reservation.ID)
	assert.Equal(t, "sap", edited.Reservation.CompanyID)
	assert.Equal(t, []domain.ServiceType{domain.ServiceInterior}, edited.Reservation.Services)

	// Ковер требует двух единиц, второй в слоте нет
	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser:    f.user(t, "sap-1"),
		ReservationID: id,
		Services:      []domain.ServiceType{domain.ServiceCarpet},
		StartTime:     at(wednesday, 8),
	})
	assert.ErrorIs(t, err, ErrSlotCapacityMet)
}

func TestExecute_EditSkipsConcurrentLimit(t *testing.T) {
	f := newFixture(t)
	first, err := f.admit(t, "ms-1", at(wednesday, 8))
	require.NoError(t, err)
	_, err = f.admit(t, "ms-1", at(wednesday, 11))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser:    f.user(t, "ms-1"),
		ReservationID: first.Reservation.ID,
		Services:      []domain.ServiceType{domain.ServiceExterior},
		StartTime:     at(wednesday, 14),
	})
	assert.NoError(t, err)
}

func TestExecute_EditErrors(t *testing.T) {
	f := newFixture(t)
	resp, err := f.admit(t, "ms-1", at(wednesday, 8))
	require.NoError(t, err)
	id := resp.Reservation.ID

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser:    f.user(t, "ms-1"),
		ReservationID: "missing",
		Services:      []domain.ServiceType{domain.ServiceExterior},
		StartTime:     at(wednesday, 8),
	})
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser:    f.user(t, "ms-2"),
		ReservationID: id,
		Services:      []domain.ServiceType{domain.ServiceExterior},
		StartTime:     at(wednesday, 8),
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.uc.Execute(context.Background(), &Request{
		ActingUser:    f.user(t, "ms-admin"),
		ReservationID: id,
		UserID:        "ms-2",
		Services:      []domain.ServiceType{domain.ServiceExterior},
		StartTime:     at(wednesday, 8),
	})
	assert.ErrorIs(t, err, ErrOwnerChange)
}

func TestExecute_CancellationFreesCapacity(t *testing.T) {
	f := newFixture(t)
	seeded := f.seed(t, "ms-2", "microsoft", at(wednesday, 8), 12)

	_, err := f.admit(t, "sap-1", at(wednesday, 8))
	require.ErrorIs(t, err, ErrSlotCapacityMet)

	require.NoError(t, f.store.Delete(context.Background(), seeded[0].ID))

	_, err = f.admit(t, "sap-1", at(wednesday, 8))
	assert.NoError(t, err)
}

// Случайная последовательность допусков не нарушает ни одного лимита
func TestExecute_RandomSequenceKeepsLimits(t *testing.T) {
	f := newFixture(t)
	rnd := rand.New(rand.NewSource(2024))

	companies := []string{"microsoft", "sap", "graphisoft"}
	var userIDs []string
	for i := 0; i < 40; i++ {
		u := domain.User{
			ID:        fmt.Sprintf("user-%d", i),
			CompanyID: companies[i%len(companies)],
			IsAdmin:   i%10 == 0,
		}
		f.users.Put(u)
		userIDs = append(userIDs, u.ID)
	}

	days := []time.Time{wednesday, wednesday.AddDate(0, 0, 1)}
	hours := []int{8, 11, 14}
	for i := 0; i < 400; i++ {
		services := []domain.ServiceType{domain.ServiceExterior}
		if rnd.Intn(4) == 0 {
			services = []domain.ServiceType{domain.ServiceCarpet}
		}
		_, err := f.admit(t, userIDs[rnd.Intn(len(userIDs))], at(days[rnd.Intn(len(days))], hours[rnd.Intn(len(hours))]), services...)
		if err != nil {
			var rejection *RejectionError
			require.ErrorAs(t, err, &rejection)
		}
	}

	all, err := f.store.List(context.Background(), domain.ReservationFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, all)

	type companyDay struct {
		company string
		date    string
	}
	perDay := make(map[companyDay]int)
	perSlot := make(map[int64]int)
	perUser := make(map[string]int)
	for _, r := range all {
		perDay[companyDay{r.CompanyID, r.Date.Format(domain.DateFormat)}] += r.TimeRequirementMinutes
		perSlot[r.StartTime.Unix()] += r.TimeRequirementMinutes
		if r.IsActive() {
			perUser[r.UserID]++
		}
	}

	for key, minutes := range perDay {
		limit, err := f.catalog.DailyLimitFor(key.company)
		require.NoError(t, err)
		assert.LessOrEqual(t, minutes, limit.Minutes(12), "%s %s", key.company, key.date)
	}
	for start, minutes := range perSlot {
		slot, err := f.catalog.FindSlotByStartHour(time.Unix(start, 0).UTC().Hour())
		require.NoError(t, err)
		assert.LessOrEqual(t, minutes, slot.CapacityMinutes(12))
	}
	for i, id := range userIDs {
		if i%10 == 0 {
			continue
		}
		assert.LessOrEqual(t, perUser[id], domain.DefaultUserConcurrentLimit, id)
	}
}

// Параллельные допуски в один слот не превышают его вместимость
func TestExecute_ConcurrentAdmissionsRespectSlotCapacity(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 40; i++ {
		f.users.Put(domain.User{ID: fmt.Sprintf("sap-%d", i+100), CompanyID: "sap"})
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			acting, err := f.users.GetUser(context.Background(), id)
			if err != nil {
				return
			}
			_, err = f.uc.Execute(context.Background(), &Request{
				ActingUser: acting,
				Services:   []domain.ServiceType{domain.ServiceExterior},
				StartTime:  at(wednesday, 8),
			})
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}(fmt.Sprintf("sap-%d", i+100))
	}
	wg.Wait()

	assert.Equal(t, 12, admitted)
	sum, err := f.store.SumTimeRequirement(context.Background(), domain.ReservationFilter{StartTime: ptr.Ptr(at(wednesday, 8))})
	require.NoError(t, err)
	assert.Equal(t, 144, sum)
}

// conflictingTx возвращает конфликт сериализации первые failures вызовов
type conflictingTx struct {
	inner    *memory.TxManager
	failures int
	calls    int
}

func (tx *conflictingTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	if tx.calls <= tx.failures {
		return fmt.Errorf("%w: could not serialize access", txmanager.ErrSerializationFailure)
	}
	return tx.inner.DoSerializable(ctx, fn)
}

func TestExecute_RetriesSerializationFailureOnce(t *testing.T) {
	tx := &conflictingTx{inner: memory.NewTxManager(), failures: 1}
	f := newFixtureWithTx(t, tx)

	_, err := f.admit(t, "ms-1", at(wednesday, 8))
	require.NoError(t, err)
	assert.Equal(t, 2, tx.calls)
}

func TestExecute_SecondConflictSurfaces(t *testing.T) {
	tx := &conflictingTx{inner: memory.NewTxManager(), failures: 2}
	f := newFixtureWithTx(t, tx)

	_, err := f.admit(t, "ms-1", at(wednesday, 8))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 2, tx.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionDecisions.WithLabelValues("test", "rejected", "conflict")))
}

func TestRejectionError_Unwrap(t *testing.T) {
	err := reject(StageCapacityChecked, ErrDayCapacityMet, "x")

	assert.ErrorIs(t, err, ErrDayCapacityMet)
	assert.ErrorIs(t, err, ErrCapacity)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "admit_reservation: day capacity met: x", err.Error())
	assert.Equal(t, "capacity_checked", err.Stage.String())
}
