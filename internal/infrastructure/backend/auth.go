package backend

import (
	"context"
	"net/http"

	"autogest/internal/domain/auth"
)

// Compile-time check that Client satisfies the gateway's backend.
var _ auth.Backend = (*Client)(nil)

// Authenticate implements auth.Backend. The exchange never carries the
// current token and a rejection never tears down the current session.
func (c *Client) Authenticate(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, error) {
	var out auth.LoginResult
	err := c.do(withoutSession(ctx), request{
		method: http.MethodPost,
		path:   "/auth/login",
		in:     creds,
		out:    &out,
		login:  true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser implements auth.Backend.
func (c *Client) CreateUser(ctx context.Context, u auth.NewUser) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/usuario",
		in:     u,
	})
}
