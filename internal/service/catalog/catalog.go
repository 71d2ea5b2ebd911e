package catalog

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// Catalog неизменяемый каталог слотов и дневных лимитов компаний
type Catalog struct {
	slots       []domain.Slot
	limits      map[string]domain.CompanyLimit
	unitMinutes int
	location    *time.Location
}

// New создает каталог. Слоты сохраняют порядок конфигурации.
func New(slots []domain.Slot, limits []domain.CompanyLimit, unitMinutes int, location *time.Location) (*Catalog, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: at least one slot is required", ErrInvalidCatalog)
	}
	if unitMinutes <= 0 {
		return nil, fmt.Errorf("%w: unit minutes must be positive", ErrInvalidCatalog)
	}
	if location == nil {
		location = time.Local
	}

	for _, s := range slots {
		if s.StartHour >= s.EndHour || s.Capacity <= 0 {
			return nil, fmt.Errorf("%w: bad slot %d-%d/%d", ErrInvalidCatalog, s.StartHour, s.EndHour, s.Capacity)
		}
	}

	byCompany := make(map[string]domain.CompanyLimit, len(limits))
	for _, l := range limits {
		if _, ok := byCompany[l.CompanyID]; ok {
			return nil, fmt.Errorf("%w: duplicate company %q", ErrInvalidCatalog, l.CompanyID)
		}
		byCompany[l.CompanyID] = l
	}

	return &Catalog{
		slots:       append([]domain.Slot(nil), slots...),
		limits:      byCompany,
		unitMinutes: unitMinutes,
		location:    location,
	}, nil
}

// FindSlotByStartHour ищет слот по часу начала
func (c *Catalog) FindSlotByStartHour(hour int) (domain.Slot, error) {
	for _, s := range c.slots {
		if s.StartHour == hour {
			return s, nil
		}
	}
	return domain.Slot{}, ErrSlotNotFound
}

// FindSlotByStartAndEndHour ищет слот с точным совпадением начала и конца
func (c *Catalog) FindSlotByStartAndEndHour(startHour, endHour int) (domain.Slot, error) {
	for _, s := range c.slots {
		if s.StartHour == startHour && s.EndHour == endHour {
			return s, nil
		}
	}
	return domain.Slot{}, ErrSlotNotFound
}

// DailyLimitFor возвращает дневной лимит компании
func (c *Catalog) DailyLimitFor(companyID string) (domain.DailyLimit, error) {
	l, ok := c.limits[companyID]
	if !ok {
		return domain.DailyLimit{}, ErrCompanyNotFound
	}
	return domain.DailyLimit{Washes: l.DailyLimit, Unlimited: l.Unlimited}, nil
}

// Slots возвращает копию слотов в порядке конфигурации
func (c *Catalog) Slots() []domain.Slot {
	return append([]domain.Slot(nil), c.slots...)
}

// UnitMinutes длительность одной мойки в минутах
func (c *Catalog) UnitMinutes() int {
	return c.unitMinutes
}

// Location часовой пояс, в котором считаются часы и даты
func (c *Catalog) Location() *time.Location {
	return c.location
}

// TimeRequirement время (в минутах), которое занимает набор услуг.
// Чистка ковров занимает вдвое больше.
func (c *Catalog) TimeRequirement(services []domain.ServiceType) int {
	for _, s := range services {
		if s == domain.ServiceCarpet {
			return domain.CarpetTimeRequirementFactor * c.unitMinutes
		}
	}
	return c.unitMinutes
}

// RemainingSlotCapacityToday суммарная вместимость (в мойках) слотов,
// которые начинаются строго позже текущего часа
func (c *Catalog) RemainingSlotCapacityToday(asOf time.Time) int {
	hour := asOf.In(c.location).Hour()
	total := 0
	for _, s := range c.slots {
		if s.StartHour > hour {
			total += s.Capacity
		}
	}
	return total
}

// SlotStart момент начала слота в указанный день
func (c *Catalog) SlotStart(date time.Time, slot domain.Slot) time.Time {
	d := date.In(c.location)
	return time.Date(d.Year(), d.Month(), d.Day(), slot.StartHour, 0, 0, 0, c.location)
}

// SlotEnd момент окончания слота в указанный день
func (c *Catalog) SlotEnd(date time.Time, slot domain.Slot) time.Time {
	d := date.In(c.location)
	return time.Date(d.Year(), d.Month(), d.Day(), slot.EndHour, 0, 0, 0, c.location)
}

// DateOf календарный день момента t в часовом поясе каталога
func (c *Catalog) DateOf(t time.Time) time.Time {
	return domain.DateOf(t.In(c.location))
}
