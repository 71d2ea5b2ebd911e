package recommend_slots

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/availability"
)

var (
	errNoOpenSlot = errors.New("no open slot on date")
	errNoOpenDate = errors.New("no open date within horizon")
)

// finder поиск свободных слотов по снимку доступности
type finder struct {
	catalog  SlotCatalog
	dates    map[string]bool
	times    map[int64]bool
	now      time.Time
	lastDate time.Time
}

func newFinder(catalog SlotCatalog, snapshot *availability.Snapshot, now time.Time, daysAhead int) *finder {
	f := &finder{
		catalog:  catalog,
		dates:    make(map[string]bool, len(snapshot.Dates)),
		times:    make(map[int64]bool, len(snapshot.Times)),
		now:      now,
		lastDate: catalog.DateOf(now).AddDate(0, 0, daysAhead),
	}
	for _, d := range snapshot.Dates {
		f.dates[catalog.DateOf(d).Format(domain.DateFormat)] = true
	}
	for _, t := range snapshot.Times {
		f.times[t.Unix()] = true
	}
	return f
}

// dateOpen рабочий день, не отмеченный как недоступный
func (f *finder) dateOpen(date time.Time) bool {
	return !domain.IsWeekend(date) && !f.dates[date.Format(domain.DateFormat)]
}

// nextOpenDate первый открытый день начиная с from в пределах горизонта
func (f *finder) nextOpenDate(from time.Time) (time.Time, error) {
	for d := from; !d.After(f.lastDate); d = d.AddDate(0, 0, 1) {
		if f.dateOpen(d) {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: from %s", errNoOpenDate, from.Format(domain.DateFormat))
}

// openSlot первый по порядку каталога слот даты, который не занят и еще не начался
func (f *finder) openSlot(date time.Time) (time.Time, error) {
	for _, slot := range f.catalog.Slots() {
		start := f.catalog.SlotStart(date, slot)
		if start.Before(f.now) || f.times[start.Unix()] {
			continue
		}
		return start, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", errNoOpenSlot, date.Format(domain.DateFormat))
}
