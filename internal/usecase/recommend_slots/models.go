package recommend_slots

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// Request запрос рекомендаций
type Request struct {
	ActingUser *domain.User
	DaysAhead  int // 0 означает горизонт по умолчанию
}

// Response рекомендованные начала слотов в порядке: сегодня, ближайший рабочий день, следующая неделя
type Response struct {
	Slots []time.Time
}
