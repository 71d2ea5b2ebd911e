package domain

import "time"

// ServiceType a wash service that can be ordered with a reservation
type ServiceType int

const (
	ServiceExterior ServiceType = iota
	ServiceInterior
	ServiceCarpet
	ServiceSpotCleaning
	ServiceVignetteRemoval
	ServicePolishing
	ServiceAcCleaningOzon
	ServiceAcCleaningBomba
	// services below are hidden from the user and added by carwash staff
	ServiceBugRemoval
	ServiceWheelCleaning
	ServiceTireCare
	ServiceLeatherCare
	ServicePlasticCare
	ServicePreWash
)

var serviceNames = map[ServiceType]string{
	ServiceExterior:        "exterior",
	ServiceInterior:        "interior",
	ServiceCarpet:          "carpet",
	ServiceSpotCleaning:    "spot cleaning",
	ServiceVignetteRemoval: "vignette removal",
	ServicePolishing:       "polishing",
	ServiceAcCleaningOzon:  "AC cleaning 'ozon'",
	ServiceAcCleaningBomba: "AC cleaning 'bomba'",
	ServiceBugRemoval:      "bug removal",
	ServiceWheelCleaning:   "wheel cleaning",
	ServiceTireCare:        "tire care",
	ServiceLeatherCare:     "leather care",
	ServicePlasticCare:     "plastic care",
	ServicePreWash:         "prewash",
}

// IsValid returns true if the service type is known
func (s ServiceType) IsValid() bool {
	_, ok := serviceNames[s]
	return ok
}

func (s ServiceType) String() string {
	if name, ok := serviceNames[s]; ok {
		return name
	}
	return "unknown"
}

// State lifecycle state of a reservation
type State int

const (
	StateSubmittedNotActual State = iota
	StateReminderSentWaitingForKey
	StateCarKeyLeftAndLocationConfirmed
	StateWashInProgress
	StateNotYetPaid
	StateDone
)

// IsValid returns true if the state is known
func (s State) IsValid() bool {
	return s >= StateSubmittedNotActual && s <= StateDone
}

// Reservation a car wash reservation placed into a slot
type Reservation struct {
	ID                 string
	UserID             string
	CompanyID          string // company of the owner, fixed at creation
	VehiclePlateNumber string
	Location           string
	Services           []ServiceType
	Private            bool
	State              State

	StartTime time.Time
	EndTime   time.Time
	// Date is the calendar day of StartTime (midnight in the catalog location)
	Date time.Time

	TimeRequirementMinutes int

	Comment        *string
	CarwashComment *string

	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasService returns true if the service was ordered
func (r *Reservation) HasService(service ServiceType) bool {
	for _, s := range r.Services {
		if s == service {
			return true
		}
	}
	return false
}

// IsActive returns true while the reservation counts against the user's concurrency limit
func (r *Reservation) IsActive() bool {
	return r.State != StateDone
}

// ReservationFilter narrows reservation queries and aggregates.
// Nil fields do not restrict the result.
type ReservationFilter struct {
	CompanyID *string
	UserID    *string
	Date      *time.Time // calendar day of the start time
	StartTime *time.Time // exact slot bucket
	StartFrom *time.Time // start_time >= StartFrom
	StartTo   *time.Time // start_time <= StartTo
	EndFrom   *time.Time // end_time >= EndFrom
	ExcludeID *string
}

// DateTotal sum of time requirement minutes on a calendar day
type DateTotal struct {
	Date    time.Time
	Minutes int
}

// StartTimeTotal sum of time requirement minutes in one slot bucket
type StartTimeTotal struct {
	StartTime time.Time
	Minutes   int
}

// LastSettings defaults for a new reservation taken from the user's newest one
type LastSettings struct {
	VehiclePlateNumber string
	Location           string
}
