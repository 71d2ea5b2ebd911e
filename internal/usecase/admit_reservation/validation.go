package admit_reservation

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// validateStructure структурные проверки в фиксированном порядке.
// Возвращает слот, которому соответствует резервация.
func (uc *UseCase) validateStructure(res *domain.Reservation, now time.Time) (domain.Slot, *RejectionError) {
	if len(res.Services) == 0 {
		return domain.Slot{}, reject(StageProposed, ErrNoServiceSelected, "")
	}
	for _, s := range res.Services {
		if !s.IsValid() {
			return domain.Slot{}, reject(StageProposed, ErrInvalidInput, "unknown service %d", s)
		}
	}
	if len(res.VehiclePlateNumber) > domain.MaxVehiclePlateLength {
		return domain.Slot{}, reject(StageProposed, ErrInvalidInput, "vehicle plate number is too long")
	}
	if res.Comment != nil && len(*res.Comment) > domain.MaxCommentLength {
		return domain.Slot{}, reject(StageProposed, ErrInvalidInput, "comment is too long")
	}

	if !domain.IsSameDay(res.StartTime, res.EndTime) {
		return domain.Slot{}, reject(StageProposed, ErrCrossDayRange, "start=%s, end=%s",
			res.StartTime.Format(time.RFC3339), res.EndTime.Format(time.RFC3339))
	}

	if res.StartTime.Before(now) || res.EndTime.Before(now) {
		return domain.Slot{}, reject(StageProposed, ErrPastDate, "start=%s, now=%s",
			res.StartTime.Format(time.RFC3339), now.Format(time.RFC3339))
	}

	if !onTheHour(res.StartTime) || !onTheHour(res.EndTime) {
		return domain.Slot{}, reject(StageProposed, ErrNotASlot, "start and end must be on the hour")
	}
	slot, err := uc.catalog.FindSlotByStartAndEndHour(res.StartTime.Hour(), res.EndTime.Hour())
	if err != nil {
		return domain.Slot{}, reject(StageProposed, ErrNotASlot, "%02d-%02d", res.StartTime.Hour(), res.EndTime.Hour())
	}

	return slot, nil
}

func onTheHour(t time.Time) bool {
	return t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
