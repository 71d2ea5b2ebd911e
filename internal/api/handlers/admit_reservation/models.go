package admit_reservation

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
	"github.com/m04kA/SMC-CarWashService/internal/service/reservations/models"
	admitReservation "github.com/m04kA/SMC-CarWashService/internal/usecase/admit_reservation"
)

// ReservationRequest HTTP request model
type ReservationRequest struct {
	ID                 string     `json:"id,omitempty"` // при редактировании должен совпасть с {id} из пути
	UserID             string     `json:"userId,omitempty"`
	Services           []int      `json:"services"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            *time.Time `json:"endDate,omitempty"` // без окончания берется конец слота
	VehiclePlateNumber string     `json:"vehiclePlateNumber"`
	Location           string     `json:"location,omitempty"`
	Private            *bool      `json:"private,omitempty"`
	Comment            *string    `json:"comment,omitempty"`
	CarwashComment     *string    `json:"carwashComment,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReservationRequest) ToUseCaseRequest(acting *domain.User, reservationID string) *admitReservation.Request {
	req := &admitReservation.Request{
		ActingUser:         acting,
		ReservationID:      reservationID,
		UserID:             r.UserID,
		Services:           models.ToDomainServices(r.Services),
		StartTime:          r.StartDate,
		End:                admitReservation.DerivedEnd{},
		VehiclePlateNumber: r.VehiclePlateNumber,
		Location:           r.Location,
		Private:            r.Private,
		Comment:            r.Comment,
		CarwashComment:     r.CarwashComment,
	}
	if r.EndDate != nil {
		req.End = admitReservation.ExplicitEnd{At: *r.EndDate}
	}
	return req
}
