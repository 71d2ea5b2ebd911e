package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]domain.Slot{
			{StartHour: 8, EndHour: 11, Capacity: 12},
			{StartHour: 11, EndHour: 14, Capacity: 12},
			{StartHour: 14, EndHour: 17, Capacity: 11},
		},
		[]domain.CompanyLimit{
			{CompanyID: "carwash", Unlimited: true},
			{CompanyID: "microsoft", DailyLimit: 14},
		},
		12,
		time.UTC,
	)
	require.NoError(t, err)
	return c
}

func TestCatalog_FindSlot(t *testing.T) {
	c := newTestCatalog(t)

	slot, err := c.FindSlotByStartHour(11)
	require.NoError(t, err)
	assert.Equal(t, 14, slot.EndHour)

	_, err = c.FindSlotByStartHour(9)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	slot, err = c.FindSlotByStartAndEndHour(14, 17)
	require.NoError(t, err)
	assert.Equal(t, 11, slot.Capacity)

	_, err = c.FindSlotByStartAndEndHour(8, 14)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCatalog_DailyLimitFor(t *testing.T) {
	c := newTestCatalog(t)

	limit, err := c.DailyLimitFor("microsoft")
	require.NoError(t, err)
	assert.Equal(t, 14, limit.Washes)
	assert.False(t, limit.Unlimited)
	assert.Equal(t, 168, limit.Minutes(c.UnitMinutes()))

	limit, err = c.DailyLimitFor("carwash")
	require.NoError(t, err)
	assert.True(t, limit.Unlimited)

	_, err = c.DailyLimitFor("unknown")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCatalog_TimeRequirement(t *testing.T) {
	c := newTestCatalog(t)

	assert.Equal(t, 12, c.TimeRequirement([]domain.ServiceType{domain.ServiceExterior}))
	assert.Equal(t, 24, c.TimeRequirement([]domain.ServiceType{domain.ServiceCarpet}))
	assert.Equal(t, 24, c.TimeRequirement([]domain.ServiceType{domain.ServiceInterior, domain.ServiceCarpet}))
}

func TestCatalog_RemainingSlotCapacityToday(t *testing.T) {
	c := newTestCatalog(t)

	cases := []struct {
		hour, minute int
		want         int
	}{
		{7, 59, 35},
		{8, 0, 23},
		{10, 30, 23},
		{11, 0, 11},
		{13, 59, 11},
		{14, 0, 0},
		{18, 0, 0},
	}

	for _, tc := range cases {
		asOf := time.Date(2024, 5, 6, tc.hour, tc.minute, 0, 0, time.UTC)
		assert.Equal(t, tc.want, c.RemainingSlotCapacityToday(asOf), "at %02d:%02d", tc.hour, tc.minute)
	}
}

func TestCatalog_SlotsKeepOrder(t *testing.T) {
	c := newTestCatalog(t)

	slots := c.Slots()
	require.Len(t, slots, 3)
	assert.Equal(t, []int{8, 11, 14}, []int{slots[0].StartHour, slots[1].StartHour, slots[2].StartHour})

	slots[0].Capacity = 0
	assert.Equal(t, 12, c.Slots()[0].Capacity)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(nil, nil, 12, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = New([]domain.Slot{{StartHour: 8, EndHour: 11, Capacity: 1}}, nil, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = New([]domain.Slot{{StartHour: 8, EndHour: 11, Capacity: 1}},
		[]domain.CompanyLimit{{CompanyID: "a"}, {CompanyID: "a"}}, 12, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}
