package rbac

import "strconv"

// Capability is a named permission flag evaluated per role.
type Capability int

// Capability constants. capabilityCount must stay last.
const (
	CanViewVehicles Capability = iota
	CanCreateReservations
	CanViewOwnReservations
	CanViewAllReservations
	CanViewNotifications
	CanEditProfile
	CanManageVehicles
	CanManageUsers
	CanManageReservations
	CanManageAlquileres
	CanManageMaintenance
	CanProcessPayments
	CanViewReports
	CanManageSystem

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CanViewVehicles:        "canViewVehicles",
	CanCreateReservations:  "canCreateReservations",
	CanViewOwnReservations: "canViewOwnReservations",
	CanViewAllReservations: "canViewAllReservations",
	CanViewNotifications:   "canViewNotifications",
	CanEditProfile:         "canEditProfile",
	CanManageVehicles:      "canManageVehicles",
	CanManageUsers:         "canManageUsers",
	CanManageReservations:  "canManageReservations",
	CanManageAlquileres:    "canManageAlquileres",
	CanManageMaintenance:   "canManageMaintenance",
	CanProcessPayments:     "canProcessPayments",
	CanViewReports:         "canViewReports",
	CanManageSystem:        "canManageSystem",
}

// Capabilities returns every capability in declaration order.
func Capabilities() []Capability {
	caps := make([]Capability, capabilityCount)
	for i := range caps {
		caps[i] = Capability(i)
	}
	return caps
}

// ParseCapability looks a capability up by its camelCase name.
func ParseCapability(name string) (Capability, bool) {
	for i, n := range capabilityNames {
		if n == name {
			return Capability(i), true
		}
	}
	return 0, false
}

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	return c >= 0 && c < capabilityCount
}

func (c Capability) String() string {
	if !c.Valid() {
		return "Capability(" + strconv.Itoa(int(c)) + ")"
	}
	return capabilityNames[c]
}
