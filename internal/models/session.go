package models

// Session is the per-request view of who is calling. It is rebuilt from
// storage whenever a token is issued and never mutated afterwards, so the
// organization fields may lag behind storage until the next refresh.
type Session struct {
	UserID    string
	Email     string
	Name      string
	SessionID string
	DeviceID  string
	// Membership is nil while the user does not belong to any organization.
	Membership *ActiveMembership
}

func (s Session) HasOrganization() bool {
	return s.Membership != nil
}

func (s Session) OrganizationID() string {
	if s.Membership == nil {
		return ""
	}
	return s.Membership.OrganizationID
}
