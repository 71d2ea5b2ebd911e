package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// QueryDaysAhead читает необязательный параметр daysAhead. 0 означает значение по умолчанию.
func QueryDaysAhead(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("daysAhead")
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("daysAhead: %w", err)
	}
	if days < 0 || days > domain.MaxDaysAhead {
		return 0, fmt.Errorf("daysAhead must be between 0 and %d", domain.MaxDaysAhead)
	}
	return days, nil
}
