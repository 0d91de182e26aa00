package enums

import "fmt"

// UserRole is carried in the access token and gates staff endpoints.
type UserRole string

const (
	UserRoleCustomer UserRole = "cliente"
	UserRoleEmployee UserRole = "empleado"
	UserRoleAdmin    UserRole = "admin"
	UserRoleCourier  UserRole = "repartidor"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleEmployee,
	UserRoleAdmin,
	UserRoleCourier,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may see other users' orders.
func (r UserRole) IsStaff() bool {
	return r == UserRoleEmployee || r == UserRoleAdmin
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
