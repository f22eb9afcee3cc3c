package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the identity a request is authorized as.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	// Synthetic marks the fixed administrative identity bound by the static
	// secret. It has no backing User record.
	Synthetic bool `json:"-"`
}

func AdminPrincipal() Principal {
	return Principal{ID: "admin", Role: RoleAdmin, Synthetic: true}
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Access is the ownership policy a mutating operation runs under.
// The routing layer builds it from the route's declared policy.
type Access struct {
	RequesterID     string
	BypassOwnership bool
}

// OwnerAccess requires the requester to own the target record.
func OwnerAccess(requesterID string) Access { return Access{RequesterID: requesterID} }

// AdminAccess skips the ownership comparison entirely.
func AdminAccess() Access { return Access{BypassOwnership: true} }

// Permits reports whether the policy allows touching a record owned by ownerID.
func (a Access) Permits(ownerID string) bool {
	if a.BypassOwnership {
		return true
	}
	return a.RequesterID != "" && a.RequesterID == ownerID
}
