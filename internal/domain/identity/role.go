package identity

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleCustomer       Role = "customer"
	RoleSchoolOperator Role = "school_operator"
	RoleAdmin          Role = "admin"
)

func NewRole(value string) (Role, error) {
	role := Role(value)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSchoolOperator, RoleAdmin:
		return true
	default:
		return false
	}
}
