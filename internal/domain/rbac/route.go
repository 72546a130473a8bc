package rbac

// Console route paths.
const (
	RouteDashboard      = "/dashboard"
	RouteVehiculos      = "/vehiculos"
	RouteReservas       = "/reservas"
	RouteAlquileres     = "/alquileres"
	RouteMantenimiento  = "/mantenimiento"
	RouteNotificaciones = "/notificaciones"
	RouteUsuarios       = "/usuarios"
	RouteReportes       = "/reportes"
	RouteConfiguracion  = "/configuracion"
)

// RouteRule describes what a role needs to open a console route.
// Exactly one of Always, AnyOf or ExactRole is set.
type RouteRule struct {
	Path  string
	Title string

	// Always admits any authenticated (valid) role.
	Always bool

	// AnyOf admits a role holding at least one of these capabilities.
	AnyOf []Capability

	// ExactRole admits only this role (no hierarchy).
	ExactRole Role
}

// Allows evaluates the rule for role. Invalid roles are always denied.
func (r RouteRule) Allows(role Role) bool {
	if !role.Valid() {
		return false
	}
	switch {
	case r.Always:
		return true
	case r.ExactRole != RoleNone:
		return role == r.ExactRole
	}
	for _, c := range r.AnyOf {
		if HasPermission(role, c) {
			return true
		}
	}
	return false
}

// routeRules is ordered as the dashboard menu shows it.
var routeRules = []RouteRule{
	{Path: RouteDashboard, Title: "Inicio", Always: true},
	{Path: RouteVehiculos, Title: "Vehículos", AnyOf: []Capability{CanViewVehicles}},
	{Path: RouteReservas, Title: "Reservas", AnyOf: []Capability{CanViewAllReservations, CanViewOwnReservations}},
	{Path: RouteAlquileres, Title: "Alquileres", AnyOf: []Capability{CanManageAlquileres}},
	{Path: RouteMantenimiento, Title: "Mantenimiento", AnyOf: []Capability{CanManageMaintenance}},
	{Path: RouteNotificaciones, Title: "Notificaciones", AnyOf: []Capability{CanViewNotifications}},
	{Path: RouteUsuarios, Title: "Usuarios", ExactRole: RoleAdministrador},
	{Path: RouteReportes, Title: "Reportes", ExactRole: RoleAdministrador},
	{Path: RouteConfiguracion, Title: "Configuración", ExactRole: RoleAdministrador},
}

var routeIndex = func() map[string]RouteRule {
	idx := make(map[string]RouteRule, len(routeRules))
	for _, r := range routeRules {
		idx[r.Path] = r
	}
	return idx
}()

// Routes returns the route table in menu order.
func Routes() []RouteRule {
	out := make([]RouteRule, len(routeRules))
	copy(out, routeRules)
	return out
}

// Rule looks up the rule for path.
func Rule(path string) (RouteRule, bool) {
	r, ok := routeIndex[path]
	return r, ok
}

// CanAccessRoute reports whether role may open path. Unknown paths are denied.
func CanAccessRoute(role Role, path string) bool {
	r, ok := routeIndex[path]
	if !ok {
		return false
	}
	return r.Allows(role)
}

// AccessTable evaluates every known route for role. It is computed on each
// call and never cached.
func AccessTable(role Role) map[string]bool {
	table := make(map[string]bool, len(routeRules))
	for _, r := range routeRules {
		table[r.Path] = r.Allows(role)
	}
	return table
}
