package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ListVehicles returns the fleet.
func (c *Client) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	if err := c.do(ctx, request{method: http.MethodGet, path: "/vehiculo", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReservations returns every reservation.
func (c *Client) ListReservations(ctx context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := c.do(ctx, request{method: http.MethodGet, path: "/reserva", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReservationsByUser returns the reservations owned by userID.
func (c *Client) ListReservationsByUser(ctx context.Context, userID string) ([]Reservation, error) {
	var out []Reservation
	path := "/reserva/usuario/" + url.PathEscape(userID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping probes the backend with the cheapest listing call. The probe is
// anonymous: it never carries the operator's token and a 401 on it leaves
// the session alone.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(withoutSession(ctx), request{method: http.MethodGet, path: "/vehiculo"})
}
