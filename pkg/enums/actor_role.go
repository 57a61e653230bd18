package enums

import "fmt"

// ActorRole is the authenticated caller's role carried in JWT claims.
type ActorRole string

const (
	ActorRoleRequester ActorRole = "requester"
	ActorRoleCollector ActorRole = "collector"
	ActorRoleAdmin     ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleRequester,
	ActorRoleCollector,
	ActorRoleAdmin,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// OwnerType maps the role to the wallet owner side it acts as.
// Admin has no wallet of its own.
func (a ActorRole) OwnerType() (OwnerType, bool) {
	switch a {
	case ActorRoleRequester:
		return OwnerTypeRequester, true
	case ActorRoleCollector:
		return OwnerTypeCollector, true
	default:
		return "", false
	}
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
