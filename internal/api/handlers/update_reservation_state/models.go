package update_reservation_state

// UpdateStateRequest HTTP request model
type UpdateStateRequest struct {
	State *int `json:"state"`
}
