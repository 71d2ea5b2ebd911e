package admit_reservation

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// Stage стадия обработки предложения
type Stage int

const (
	StageProposed Stage = iota
	StageStructurallyValidated
	StageCapacityChecked
	StageAdmitted
)

func (s Stage) String() string {
	switch s {
	case StageProposed:
		return "proposed"
	case StageStructurallyValidated:
		return "structurally_validated"
	case StageCapacityChecked:
		return "capacity_checked"
	case StageAdmitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// EndTime способ задать окончание резервации: DerivedEnd или ExplicitEnd
type EndTime interface {
	isEndTime()
}

// DerivedEnd окончание берется из слота, которому соответствует начало
type DerivedEnd struct{}

// ExplicitEnd окончание задано явно и должно совпасть с окончанием слота
type ExplicitEnd struct {
	At time.Time
}

func (DerivedEnd) isEndTime()  {}
func (ExplicitEnd) isEndTime() {}

// Request предложение резервации
type Request struct {
	ActingUser *domain.User // пользователь, выполняющий запрос

	// ReservationID пусто для новой резервации, иначе ID редактируемой
	ReservationID string

	UserID             string // владелец, по умолчанию действующий пользователь
	Services           []domain.ServiceType
	StartTime          time.Time
	End                EndTime // nil означает DerivedEnd
	VehiclePlateNumber string
	Location           string
	Private            *bool
	Comment            *string
	CarwashComment     *string
}

// IsNew возвращает true для новой резервации
func (r *Request) IsNew() bool {
	return r.ReservationID == ""
}

// Response допущенная резервация
type Response struct {
	Reservation *domain.Reservation
	Created     bool
}
