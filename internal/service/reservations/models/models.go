package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// ReservationResponse ответ с данными резервации
type ReservationResponse struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"userId"`
	CompanyID          string  `json:"companyId"`
	VehiclePlateNumber string  `json:"vehiclePlateNumber"`
	Location           string  `json:"location,omitempty"`
	Services           []int   `json:"services"`
	Private            bool    `json:"private"`
	State              int     `json:"state"`
	StartDate          string  `json:"startDate"` // RFC 3339
	EndDate            string  `json:"endDate"`
	TimeRequirement    int     `json:"timeRequirement"` // минуты
	Comment            *string `json:"comment,omitempty"`
	CarwashComment     *string `json:"carwashComment,omitempty"`
	CreatedByID        string  `json:"createdById"`

	CreatedAt time.Time `json:"createdOn"`
	UpdatedAt time.Time `json:"updatedOn"`
}

// ReservationListResponse ответ со списком резерваций
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// ObfuscatedReservationResponse резервация без данных пользователя
type ObfuscatedReservationResponse struct {
	CompanyID       string `json:"companyId"`
	Services        []int  `json:"services"`
	TimeRequirement int    `json:"timeRequirement"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
}

// ObfuscatedListResponse ответ со списком обезличенных резерваций
type ObfuscatedListResponse struct {
	Reservations []ObfuscatedReservationResponse `json:"reservations"`
}

// LastSettingsResponse номер и место парковки из последней резервации
type LastSettingsResponse struct {
	VehiclePlateNumber string `json:"vehiclePlateNumber"`
	Location           string `json:"location"`
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		CompanyID:          r.CompanyID,
		VehiclePlateNumber: r.VehiclePlateNumber,
		Location:           r.Location,
		Services:           FromDomainServices(r.Services),
		Private:            r.Private,
		State:              int(r.State),
		StartDate:          r.StartTime.Format(time.RFC3339),
		EndDate:            r.EndTime.Format(time.RFC3339),
		TimeRequirement:    r.TimeRequirementMinutes,
		Comment:            r.Comment,
		CarwashComment:     r.CarwashComment,
		CreatedByID:        r.CreatedByID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}
	return resp
}

// FromDomainObfuscatedList конвертирует резервации в обезличенный список
func FromDomainObfuscatedList(reservations []*domain.Reservation) *ObfuscatedListResponse {
	resp := &ObfuscatedListResponse{
		Reservations: make([]ObfuscatedReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, ObfuscatedReservationResponse{
			CompanyID:       r.CompanyID,
			Services:        FromDomainServices(r.Services),
			TimeRequirement: r.TimeRequirementMinutes,
			StartDate:       r.StartTime.Format(time.RFC3339),
			EndDate:         r.EndTime.Format(time.RFC3339),
		})
	}
	return resp
}

// FromDomainServices конвертирует услуги в их числовые коды
func FromDomainServices(services []domain.ServiceType) []int {
	out := make([]int, len(services))
	for i, s := range services {
		out[i] = int(s)
	}
	return out
}

// ToDomainServices конвертирует числовые коды в услуги
func ToDomainServices(codes []int) []domain.ServiceType {
	out := make([]domain.ServiceType, len(codes))
	for i, c := range codes {
		out[i] = domain.ServiceType(c)
	}
	return out
}
