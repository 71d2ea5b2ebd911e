package blockers

import "errors"

var (
	// ErrBlockerNotFound возвращается, когда период закрытия не найден
	ErrBlockerNotFound = errors.New("blockers: blocker not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("blockers: access denied")

	// ErrInvalidRange возвращается, когда начало позже окончания или период длиннее месяца
	ErrInvalidRange = errors.New("blockers: invalid time range")

	// ErrOverlap возвращается, когда период пересекается с существующим
	ErrOverlap = errors.New("blockers: overlaps an existing blocker")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("blockers: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("blockers: internal error")
)
