package dto

import (
	"autogest/internal/domain/guard"
	"autogest/internal/domain/rbac"
	"autogest/internal/domain/session"
	"autogest/internal/infrastructure/backend"
)

// UserView is the identity shown in the page header.
type UserView struct {
	Nombre string
	Correo string
	Rol    string
}

// NavItem is one entry of the section menu.
type NavItem struct {
	Path   string
	Title  string
	Active bool
}

// Layout carries what every page template needs.
type Layout struct {
	Title string
	User  *UserView
	Nav   []NavItem
}

// NewLayout builds the page frame. The menu lists only the routes the
// session's role can open, recomputed on every call.
func NewLayout(title string, sess *session.Session, current string) Layout {
	l := Layout{Title: title}
	if sess == nil {
		return l
	}

	l.User = &UserView{
		Nombre: sess.DisplayName,
		Correo: sess.Email,
		Rol:    string(sess.Role),
	}
	access := rbac.AccessTable(sess.Role)
	for _, r := range rbac.Routes() {
		if access[r.Path] {
			l.Nav = append(l.Nav, NavItem{Path: r.Path, Title: r.Title, Active: r.Path == current})
		}
	}
	return l
}

// DenialView is the 403 page.
type DenialView struct {
	Layout
	Heading      string
	Message      string
	Role         string
	RequiredRole string
	BackURL      string
}

// NewDenialView renders a forbidden decision. The page always shows the
// role the operator actually holds.
func NewDenialView(d guard.Decision, sess *session.Session, referer string) DenialView {
	v := DenialView{
		Layout:  NewLayout("Acceso Denegado", sess, ""),
		Role:    string(d.Role),
		BackURL: referer,
	}
	if v.BackURL == "" {
		v.BackURL = rbac.RouteDashboard
	}

	if d.Reason == guard.ReasonRole {
		v.Heading = "Rol Requerido"
		v.Message = "Necesitas el rol " + string(d.RequiredRole) + " para acceder a esta sección."
		v.RequiredRole = string(d.RequiredRole)
		return v
	}
	v.Heading = "Acceso Denegado"
	v.Message = "No tienes permisos para acceder a esta sección."
	return v
}

// DashboardView is the landing page.
type DashboardView struct {
	Layout
	Greeting     string
	Rol          string
	AccessLevel  int
	Sections     []NavItem
	Capabilities []string
}

// NewDashboardView lists the sections and capabilities of the session's role.
func NewDashboardView(sess *session.Session) DashboardView {
	v := DashboardView{
		Layout:      NewLayout("Inicio", sess, rbac.RouteDashboard),
		Greeting:    "Usuario",
		Rol:         "Sin rol",
		AccessLevel: rbac.AccessLevel(sess.Role),
	}
	if sess.DisplayName != "" {
		v.Greeting = sess.DisplayName
	}
	if sess.Role != rbac.RoleNone {
		v.Rol = string(sess.Role)
	}
	for _, item := range v.Nav {
		if item.Path != rbac.RouteDashboard {
			v.Sections = append(v.Sections, item)
		}
	}
	for _, c := range rbac.CapabilitiesOf(sess.Role) {
		v.Capabilities = append(v.Capabilities, c.String())
	}
	return v
}

// VehiclesView is the fleet listing.
type VehiclesView struct {
	Layout
	Vehicles   []backend.Vehicle
	CanManage  bool
	CanReserve bool
	Error      string
}

// ReservationsView is the reservation listing.
type ReservationsView struct {
	Layout
	Reservations []backend.Reservation
	// AllUsers is true when the listing covers every customer.
	AllUsers  bool
	Pending   int
	Confirmed int
	Total     float64
	Error     string
}

// NewReservationsView summarizes reservations the way the listing header does.
func NewReservationsView(sess *session.Session, list []backend.Reservation, allUsers bool) ReservationsView {
	v := ReservationsView{
		Layout:       NewLayout("Reservas", sess, rbac.RouteReservas),
		Reservations: list,
		AllUsers:     allUsers,
	}
	for _, r := range list {
		switch r.Status() {
		case "Pendiente":
			v.Pending++
		case "Confirmada":
			v.Confirmed++
		}
		v.Total += r.TotalPrecio
	}
	return v
}

// SectionView is a protected section without backend data.
type SectionView struct {
	Layout
	Heading     string
	Description string
}
