package blockers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-CarWashService/internal/service/blockers/models"
	"github.com/m04kA/SMC-CarWashService/pkg/logger"
	"github.com/m04kA/SMC-CarWashService/pkg/ptr"
)

var (
	operator = &domain.User{ID: "op", CompanyID: "carwash", IsOperatorAdmin: true}
	admin    = &domain.User{ID: "a1", CompanyID: "microsoft", IsAdmin: true}
	user     = &domain.User{ID: "u1", CompanyID: "microsoft"}
)

func day(month time.Month, d, h, m, s int) time.Time {
	return time.Date(2019, month, d, h, m, s, 0, time.UTC)
}

func newService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(memory.NewBlockerStore(), memory.NewTxManager(), time.UTC, logger.NewNop())

	// существующая блокировка 20-22 ноября
	_, err := svc.Create(context.Background(), &models.CreateBlockerRequest{
		StartDate: day(time.November, 20, 0, 0, 0),
		EndDate:   ptr.Ptr(day(time.November, 22, 23, 59, 59)),
		Comment:   ptr.Ptr("maintenance"),
	}, operator)
	require.NoError(t, err)
	return svc
}

func TestService_List(t *testing.T) {
	svc := newService(t)

	for _, u := range []*domain.User{admin, operator} {
		resp, err := svc.List(context.Background(), u)
		require.NoError(t, err)
		assert.Len(t, resp.Blockers, 1)
	}

	_, err := svc.List(context.Background(), user)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestService_Get(t *testing.T) {
	svc := newService(t)
	list, err := svc.List(context.Background(), operator)
	require.NoError(t, err)
	id := list.Blockers[0].ID

	got, err := svc.Get(context.Background(), id, admin)
	require.NoError(t, err)
	assert.Equal(t, "maintenance", *got.Comment)

	_, err = svc.Get(context.Background(), id, user)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Get(context.Background(), "", admin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Get(context.Background(), "missing", admin)
	assert.ErrorIs(t, err, ErrBlockerNotFound)
}

func TestService_CreateDefaultsEndToEndOfDay(t *testing.T) {
	svc := newService(t)

	created, err := svc.Create(context.Background(), &models.CreateBlockerRequest{
		StartDate: day(time.December, 2, 0, 0, 0),
	}, operator)
	require.NoError(t, err)
	assert.Equal(t, day(time.December, 2, 23, 59, 59), created.EndDate)
	assert.NotEmpty(t, created.ID)
}

func TestService_CreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		acting  *domain.User
		wantErr error
	}{
		{"not carwash staff", day(time.December, 2, 0, 0, 0), day(time.December, 4, 23, 59, 59), admin, ErrAccessDenied},
		{"longer than one month", day(time.November, 2, 0, 0, 0), day(time.December, 4, 23, 59, 59), operator, ErrInvalidRange},
		{"start later than end", day(time.December, 4, 0, 0, 0), day(time.December, 2, 23, 59, 59), operator, ErrInvalidRange},
		{"overlapping at beginning", day(time.November, 18, 0, 0, 0), day(time.November, 20, 23, 59, 59), operator, ErrOverlap},
		{"overlapping at end", day(time.November, 22, 0, 0, 0), day(time.November, 24, 23, 59, 59), operator, ErrOverlap},
		{"overlapping subset", day(time.November, 21, 0, 0, 0), day(time.November, 21, 23, 59, 59), operator, ErrOverlap},
		{"overlapping superset", day(time.November, 19, 0, 0, 0), day(time.November, 23, 23, 59, 59), operator, ErrOverlap},
		{"exactly overlapping", day(time.November, 20, 0, 0, 0), day(time.November, 22, 23, 59, 59), operator, ErrOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			_, err := svc.Create(context.Background(), &models.CreateBlockerRequest{
				StartDate: tt.start,
				EndDate:   ptr.Ptr(tt.end),
			}, tt.acting)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_CreateAdjacentAllowed(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create(context.Background(), &models.CreateBlockerRequest{
		StartDate: day(time.November, 23, 0, 0, 0),
	}, operator)
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	svc := newService(t)
	list, err := svc.List(context.Background(), operator)
	require.NoError(t, err)
	id := list.Blockers[0].ID

	assert.ErrorIs(t, svc.Delete(context.Background(), id, admin), ErrAccessDenied)
	require.NoError(t, svc.Delete(context.Background(), id, operator))
	assert.ErrorIs(t, svc.Delete(context.Background(), id, operator), ErrBlockerNotFound)
}
