package userservice

import "github.com/m04kA/SMC-CarWashService/internal/domain"

// User модель пользователя из UserService
type User struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CompanyID      string `json:"company_id"`
	IsAdmin        bool   `json:"is_admin"`
	IsCarwashAdmin bool   `json:"is_carwash_admin"`
}

// ToDomain конвертирует в доменную модель
func (u *User) ToDomain() *domain.User {
	return &domain.User{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		CompanyID:       u.CompanyID,
		IsAdmin:         u.IsAdmin,
		IsOperatorAdmin: u.IsCarwashAdmin,
	}
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
