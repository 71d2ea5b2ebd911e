package catalog

import "errors"

var (
	// ErrSlotNotFound возвращается, когда час не совпадает ни с одним слотом
	ErrSlotNotFound = errors.New("catalog: slot not found")

	// ErrCompanyNotFound возвращается, когда для компании не настроен лимит
	ErrCompanyNotFound = errors.New("catalog: company not found")

	// ErrInvalidCatalog возвращается при некорректной конфигурации каталога
	ErrInvalidCatalog = errors.New("catalog: invalid catalog")
)
