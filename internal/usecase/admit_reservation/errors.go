package admit_reservation

import (
	"errors"
	"fmt"
)

// Категории отказов
var (
	// ErrValidation структурная ошибка предложения
	ErrValidation = errors.New("admit_reservation: validation error")

	// ErrAuthorization действующий пользователь не вправе выполнить операцию
	ErrAuthorization = errors.New("admit_reservation: authorization error")

	// ErrCapacity исчерпана вместимость или лимит
	ErrCapacity = errors.New("admit_reservation: capacity error")

	// ErrNotFound ссылка на несуществующий объект
	ErrNotFound = errors.New("admit_reservation: not found")

	// ErrConflict повторный конфликт сериализации
	ErrConflict = errors.New("admit_reservation: conflict")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("admit_reservation: internal error")
)

// Причины отказа
var (
	ErrNoServiceSelected   = errors.New("admit_reservation: no service selected")
	ErrInvalidInput        = errors.New("admit_reservation: invalid input data")
	ErrCrossDayRange       = errors.New("admit_reservation: start and end are on different days")
	ErrPastDate            = errors.New("admit_reservation: reservation is in the past")
	ErrNotASlot            = errors.New("admit_reservation: time range is not a slot")
	ErrBlocked             = errors.New("admit_reservation: car wash is closed at this time")
	ErrForbidden           = errors.New("admit_reservation: not allowed to act for this user")
	ErrOwnerChange         = errors.New("admit_reservation: reservation owner cannot be changed")
	ErrUserNotFound        = errors.New("admit_reservation: user not found")
	ErrUnknownCompany      = errors.New("admit_reservation: company has no daily limit configured")
	ErrReservationNotFound = errors.New("admit_reservation: reservation not found")
	ErrConcurrentLimitMet  = errors.New("admit_reservation: concurrent reservation limit met")
	ErrDayCapacityMet      = errors.New("admit_reservation: day capacity met")
	ErrSlotCapacityMet     = errors.New("admit_reservation: slot capacity met")
)

var categories = map[error]error{
	ErrNoServiceSelected:   ErrValidation,
	ErrInvalidInput:        ErrValidation,
	ErrCrossDayRange:       ErrValidation,
	ErrPastDate:            ErrValidation,
	ErrNotASlot:            ErrValidation,
	ErrBlocked:             ErrValidation,
	ErrOwnerChange:         ErrValidation,
	ErrUnknownCompany:      ErrValidation,
	ErrForbidden:           ErrAuthorization,
	ErrUserNotFound:        ErrNotFound,
	ErrReservationNotFound: ErrNotFound,
	ErrConcurrentLimitMet:  ErrCapacity,
	ErrDayCapacityMet:      ErrCapacity,
	ErrSlotCapacityMet:     ErrCapacity,
	ErrConflict:            ErrConflict,
}

var codes = map[error]string{
	ErrNoServiceSelected:   "no_service_selected",
	ErrInvalidInput:        "invalid_input",
	ErrCrossDayRange:       "cross_day_range",
	ErrPastDate:            "past_date",
	ErrNotASlot:            "not_a_slot",
	ErrBlocked:             "blocked",
	ErrOwnerChange:         "owner_change",
	ErrUnknownCompany:      "unknown_company",
	ErrForbidden:           "forbidden",
	ErrUserNotFound:        "user_not_found",
	ErrReservationNotFound: "reservation_not_found",
	ErrConcurrentLimitMet:  "concurrent_limit_met",
	ErrDayCapacityMet:      "day_capacity_met",
	ErrSlotCapacityMet:     "slot_capacity_met",
	ErrConflict:            "conflict",
}

// RejectionError отказ в допуске с причиной и стадией, на которой он произошел.
// errors.Is находит как причину (ErrSlotCapacityMet), так и категорию (ErrCapacity).
type RejectionError struct {
	Stage   Stage
	Reason  error
	Message string
}

func reject(stage Stage, reason error, format string, v ...interface{}) *RejectionError {
	return &RejectionError{
		Stage:   stage,
		Reason:  reason,
		Message: fmt.Sprintf(format, v...),
	}
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Message)
}

// Unwrap возвращает причину и её категорию
func (e *RejectionError) Unwrap() []error {
	if category, ok := categories[e.Reason]; ok && category != e.Reason {
		return []error{e.Reason, category}
	}
	return []error{e.Reason}
}

// Code машиночитаемый код причины
func (e *RejectionError) Code() string {
	if code, ok := codes[e.Reason]; ok {
		return code
	}
	return "unknown"
}
