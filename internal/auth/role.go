package auth

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser            Role = "user"
	RoleAdmin           Role = "admin"
	RoleMaster          Role = "master"
	RoleMasterAssistant Role = "master_assistant"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleMaster, RoleMasterAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// CanApproveLoans reports whether the role may approve or reject loans.
func (r Role) CanApproveLoans() bool {
	switch r {
	case RoleAdmin, RoleMaster:
		return true
	case RoleUser, RoleMasterAssistant:
		return false
	default:
		return false
	}
}

// CanViewAll reports whether the role may read other accounts' loans, investments and entries.
func (r Role) CanViewAll() bool {
	switch r {
	case RoleAdmin, RoleMaster, RoleMasterAssistant:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// CanAdminister reports whether the role may open accounts and run ledger maintenance.
func (r Role) CanAdminister() bool {
	switch r {
	case RoleAdmin, RoleMaster:
		return true
	case RoleUser, RoleMasterAssistant:
		return false
	default:
		return false
	}
}
