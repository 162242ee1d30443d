package staff

import "time"

// Organization is a tenant that owns products and distribution channels.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Member is a staff account belonging to exactly one organization. Members
// issue share tokens and view their own products at full access.
type Member struct {
	ID           string
	OrgID        string
	Email        string
	PasswordHash string
	Status       string
	CreatedAt    time.Time
}

// Active reports whether the member may authenticate.
func (m Member) Active() bool {
	return m.Status == "active"
}
