package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/rbac"
	"autogest/internal/infrastructure/backend"
	"autogest/internal/infrastructure/http/console/dto"
)

// Catalog is the backend data the console pages list.
type Catalog interface {
	ListVehicles(ctx context.Context) ([]backend.Vehicle, error)
	ListReservations(ctx context.Context) ([]backend.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]backend.Reservation, error)
}

// PageHandler serves the protected console pages. Every handler here runs
// behind middleware.Guard, so a session is always attached.
type PageHandler struct {
	*BaseHandler
	catalog Catalog
}

// NewPageHandler creates a new page handler.
func NewPageHandler(base *BaseHandler, catalog Catalog) *PageHandler {
	return &PageHandler{
		BaseHandler: base,
		catalog:     catalog,
	}
}

// Dashboard handles GET /dashboard
func (h *PageHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", dto.NewDashboardView(h.Session(c)))
}

// Vehicles handles GET /vehiculos
func (h *PageHandler) Vehicles(c *gin.Context) {
	sess := h.Session(c)
	view := dto.VehiclesView{
		Layout:     dto.NewLayout("Vehículos", sess, rbac.RouteVehiculos),
		CanManage:  rbac.HasPermission(sess.Role, rbac.CanManageVehicles),
		CanReserve: rbac.HasPermission(sess.Role, rbac.CanCreateReservations),
	}

	list, err := h.catalog.ListVehicles(c.Request.Context())
	if err != nil {
		if h.abortOn(c, err) {
			return
		}
		msg, status := messageOf(err, "Error al obtener los vehículos")
		view.Error = msg
		c.HTML(status, "vehicles.html", view)
		return
	}

	view.Vehicles = list
	c.HTML(http.StatusOK, "vehicles.html", view)
}

// Reservations handles GET /reservas. Operators who may see every
// reservation get the full list; everyone else gets their own.
func (h *PageHandler) Reservations(c *gin.Context) {
	sess := h.Session(c)
	ctx := c.Request.Context()
	all := rbac.HasPermission(sess.Role, rbac.CanViewAllReservations)

	var (
		list []backend.Reservation
		err  error
	)
	if all {
		list, err = h.catalog.ListReservations(ctx)
	} else {
		list, err = h.catalog.ListReservationsByUser(ctx, sess.UserID)
	}

	view := dto.NewReservationsView(sess, list, all)
	if err != nil {
		if h.abortOn(c, err) {
			return
		}
		msg, status := messageOf(err, "Error al obtener las reservas")
		view.Error = msg
		c.HTML(status, "reservations.html", view)
		return
	}
	c.HTML(http.StatusOK, "reservations.html", view)
}

// Section returns a handler for a protected section without backend data.
func (h *PageHandler) Section(path string, description string) gin.HandlerFunc {
	title := path
	if r, ok := rbac.Rule(path); ok {
		title = r.Title
	}
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "section.html", dto.SectionView{
			Layout:      dto.NewLayout(title, h.Session(c), path),
			Heading:     title,
			Description: description,
		})
	}
}

// abortOn hands errors that end the page to the error middleware: a
// rejected session (redirect to login) or an abandoned request.
func (h *PageHandler) abortOn(c *gin.Context, err error) bool {
	if apperror.RequiresLogin(err) {
		h.Error(c, err)
		return true
	}
	if c.Request.Context().Err() != nil {
		c.Abort()
		return true
	}
	return false
}
