package sequencer

import (
	"fmt"
	"strings"
)

// Role is an instrument role. Its numeric value is the merge priority:
// at equal ticks lower roles are emitted first.
type Role int

const (
	RoleBackground Role = iota
	RoleMedium
	RoleDetail
)

// Roles lists every role in priority order.
var Roles = [...]Role{RoleBackground, RoleMedium, RoleDetail}

var roleNames = []string{"background", "medium", "detail"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole accepts a role name; "details" is an alias of detail.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "details" {
		return RoleDetail, nil
	}
	for i, name := range roleNames {
		if s == name {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
