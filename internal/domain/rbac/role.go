// Package rbac holds the console's static authorization model: the closed set
// of roles and capabilities, the role→capability matrix, the route access
// table and the decision functions evaluated over them.
//
// Decision functions are total. Unknown, empty or otherwise unrecognized roles
// never cause an error; they are simply denied.
package rbac

// Role is the role name assigned by the backend at account creation.
// The string values are the backend's `rol` wire values.
type Role string

// Roles known to the console.
const (
	RoleNone          Role = ""
	RoleCliente       Role = "Cliente"
	RoleEmpleado      Role = "Empleado"
	RoleAdministrador Role = "Administrador"
)

// Roles returns the closed set of roles, lowest privilege first.
func Roles() []Role {
	return []Role{RoleCliente, RoleEmpleado, RoleAdministrador}
}

// ParseRole maps a wire value to a Role. Unknown values map to RoleNone.
func ParseRole(s string) Role {
	r := Role(s)
	if r.Valid() {
		return r
	}
	return RoleNone
}

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCliente, RoleEmpleado, RoleAdministrador:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// HasRole reports whether role satisfies required under the privilege chain
// Cliente < Empleado < Administrador.
//
// Administrador satisfies any requirement, Empleado satisfies anything but
// Administrador, Cliente satisfies only Cliente. This is the only place the
// ordering is encoded; the capability matrix is configured independently.
func HasRole(role, required Role) bool {
	switch role {
	case RoleAdministrador:
		return true
	case RoleEmpleado:
		return required != RoleAdministrador
	case RoleCliente:
		return required == RoleCliente
	}
	return false
}

// AccessLevel returns a coarse privilege level for sorting and display:
// Administrador 3, Empleado 2, Cliente 1, anything else 0.
func AccessLevel(role Role) int {
	switch role {
	case RoleAdministrador:
		return 3
	case RoleEmpleado:
		return 2
	case RoleCliente:
		return 1
	default:
		return 0
	}
}
