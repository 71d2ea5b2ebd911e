package domain

// User acting or owning user, provided by the user service
type User struct {
	ID        string
	FirstName string
	LastName  string
	CompanyID string
	// IsAdmin company admin: exempt from the concurrency limit, may act for other users
	IsAdmin bool
	// IsOperatorAdmin carwash staff: exempt from every capacity and concurrency check
	IsOperatorAdmin bool
}

// IsPrivileged returns true for company admins and carwash staff
func (u *User) IsPrivileged() bool {
	return u.IsAdmin || u.IsOperatorAdmin
}

// CanActFor returns true if the user may manage reservations of ownerID
func (u *User) CanActFor(ownerID string) bool {
	return u.ID == ownerID || u.IsPrivileged()
}
