package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда резервация не найдена
	ErrReservationNotFound = errors.New("reservations: reservation not found")

	// ErrNoLastSettings возвращается, когда у пользователя еще нет резерваций
	ErrNoLastSettings = errors.New("reservations: user has no reservations yet")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrInvalidState возвращается при попытке установить недопустимое состояние
	ErrInvalidState = errors.New("reservations: invalid reservation state")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
