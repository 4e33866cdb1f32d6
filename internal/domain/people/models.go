package people

import "time"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleFounder  = "founder"
)

// Person carries its role as data, resolved once when the row is loaded.
// Capability checks branch on Role; nothing ever probes for a person's
// role by trying lookups in sequence.
type Person struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	ManagerID   *string    `json:"managerId,omitempty"`
	Department  string     `json:"department,omitempty"`
	Designation string     `json:"designation,omitempty"`
	JoinedOn    *time.Time `json:"joinedOn,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleFounder:
		return true
	}
	return false
}

// CanApprove reports whether actor may approve or reject a request made
// by requester. Founders approve anyone (other than themselves); a
// manager approves only their direct reports.
func CanApprove(actor, requester Person) bool {
	if actor.ID == requester.ID {
		return false
	}
	if actor.Role == RoleFounder {
		return true
	}
	if actor.Role == RoleManager && requester.Role == RoleEmployee {
		return requester.ManagerID != nil && *requester.ManagerID == actor.ID
	}
	return false
}
