package model

import "fmt"

// Permission is the ordered access ladder stored in users.permission and
// embedded in access tokens.  The numeric order is used only for the
// promote/demote stepping helpers below; authorization decisions are made
// by exact membership against the set of permissions a route accepts,
// never by comparing levels.
type Permission uint8

const (
	PermissionVisitor       Permission = 0
	PermissionUser          Permission = 1
	PermissionOperator      Permission = 2
	PermissionAdministrator Permission = 3
	PermissionDeveloper     Permission = 4
)

// permissionNames maps each ladder value to its canonical wire string.
var permissionNames = map[Permission]string{
	PermissionVisitor:       "VISITOR",
	PermissionUser:          "USER",
	PermissionOperator:      "OPERATOR",
	PermissionAdministrator: "ADMINISTRATOR",
	PermissionDeveloper:     "DEVELOPER",
}

func (p Permission) String() string {
	if s, ok := permissionNames[p]; ok {
		return s
	}
	return fmt.Sprintf("PERMISSION(%d)", uint8(p))
}

// Valid reports whether p is one of the five ladder values.
func (p Permission) Valid() bool {
	_, ok := permissionNames[p]
	return ok
}

// ParsePermission maps a wire string back onto the ladder.  Unknown input
// is an error; callers must not fall back to a default level.
func ParsePermission(s string) (Permission, error) {
	for p, name := range permissionNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown permission %q", s)
}

// Next returns the ladder value one rung up, capped at Developer.  Used by
// the promote action in the UI, not by any authorization check.
func (p Permission) Next() Permission {
	if p >= PermissionDeveloper {
		return PermissionDeveloper
	}
	return p + 1
}

// Prev returns the ladder value one rung down, capped at Visitor.
func (p Permission) Prev() Permission {
	if p <= PermissionVisitor {
		return PermissionVisitor
	}
	return p - 1
}
