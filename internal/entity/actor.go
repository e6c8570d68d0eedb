package entity

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAdvisor Role = "advisor"
)

// Actor is the resolved identity acting on a request. It is derived once by
// the auth middleware and passed explicitly through every layer that needs
// attribution or permission checks.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// User is the externally managed account a lead can be assigned to. Only the
// fields needed for labels and notification routing live here.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
