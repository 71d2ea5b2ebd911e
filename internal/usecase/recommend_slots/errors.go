package recommend_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("recommend_slots: invalid input data")

	// ErrCompanyNotFound возвращается, когда компания пользователя не настроена
	ErrCompanyNotFound = errors.New("recommend_slots: company not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("recommend_slots: internal error")
)
