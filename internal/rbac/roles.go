package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin  = "admin"
	RoleAgent  = "agent"
	RoleClient = "client"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleClient:
		return true
	default:
		return false
	}
}
