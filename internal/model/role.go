package model

import (
	"fmt"
	"strings"
)

// Role is a job-title classification, orthogonal to Permission.  It is
// carried in tokens and shown in listings but never consulted by the
// authorization middleware.
type Role string

const (
	RoleIntern      Role = "INTERN"
	RoleManager     Role = "MANAGER"
	RoleAnalyst     Role = "ANALYST"
	RoleCoordinator Role = "COORDINATOR"
	RoleDirector    Role = "DIRECTOR"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleIntern, RoleManager, RoleAnalyst, RoleCoordinator, RoleDirector}

// ParseRole normalizes and validates a role string.  An unrecognized value
// is rejected rather than silently mapped to some default title.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
