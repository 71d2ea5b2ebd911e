package availability

import "errors"

var (
	// ErrCompanyNotFound возвращается, когда компания не настроена в каталоге
	ErrCompanyNotFound = errors.New("availability: company not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
