package rbac

// CapabilitySet holds one flag per capability. A role's set is a fixed-size
// array, so every role has a value for every capability; anything not granted
// is false.
type CapabilitySet [capabilityCount]bool

// Has reports whether c is granted in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return c.Valid() && s[c]
}

// permissionMatrix is the single source of truth for role capabilities.
// It has no runtime mutation path; changing it is a deployment.
var permissionMatrix = map[Role]CapabilitySet{
	RoleCliente: grant(
		CanViewVehicles,
		CanCreateReservations,
		CanViewOwnReservations,
		CanViewNotifications,
		CanEditProfile,
	),
	RoleEmpleado: grant(
		CanViewVehicles,
		CanCreateReservations,
		CanViewAllReservations,
		CanManageAlquileres,
		CanManageMaintenance,
		CanViewNotifications,
		CanProcessPayments,
		CanViewReports,
	),
	RoleAdministrador: grant(
		CanViewVehicles,
		CanCreateReservations,
		CanViewAllReservations,
		CanManageVehicles,
		CanManageUsers,
		CanManageReservations,
		CanManageAlquileres,
		CanManageMaintenance,
		CanViewNotifications,
		CanProcessPayments,
		CanViewReports,
		CanManageSystem,
	),
}

func grant(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s[c] = true
	}
	return s
}

// HasPermission reports whether role is granted capability c.
// Unknown roles and out-of-range capabilities are denied.
func HasPermission(role Role, c Capability) bool {
	set, ok := permissionMatrix[role]
	if !ok {
		return false
	}
	return set.Has(c)
}

// CapabilitiesOf returns the capabilities granted to role, in declaration order.
// Returns nil for unknown roles.
func CapabilitiesOf(role Role) []Capability {
	set, ok := permissionMatrix[role]
	if !ok {
		return nil
	}
	var caps []Capability
	for _, c := range Capabilities() {
		if set[c] {
			caps = append(caps, c)
		}
	}
	return caps
}

// Matrix returns a copy of the permission matrix.
func Matrix() map[Role]CapabilitySet {
	m := make(map[Role]CapabilitySet, len(permissionMatrix))
	for r, s := range permissionMatrix {
		m[r] = s
	}
	return m
}
