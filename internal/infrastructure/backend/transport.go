package backend

import (
	"context"
	"net/http"

	"autogest/internal/domain/session"
	"autogest/internal/metrics"
	"autogest/pkg/logger"
)

type skipSessionKey struct{}

// withoutSession marks a request as exempt from bearer decoration and from
// session teardown on 401. Used for the credential exchange itself.
func withoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipSessionKey{}, true)
}

func sessionSkipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipSessionKey{}).(bool)
	return skip
}

// tokenClearer is implemented by stores that can clear conditionally.
type tokenClearer interface {
	ClearIfToken(ctx context.Context, token string) (bool, error)
}

// sessionTransport attaches the current bearer token to outgoing requests and
// tears the session down when the backend rejects it.
type sessionTransport struct {
	base       http.RoundTripper
	store      session.Store
	onRejected func(ctx context.Context)
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	skip := sessionSkipped(ctx)

	var token string
	if !skip {
		if s := t.store.Current(); s != nil && s.Token != "" {
			token = s.Token
			req = req.Clone(ctx)
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && !skip {
		t.reject(context.WithoutCancel(ctx), token)
	}
	return resp, nil
}

// reject tears down the session the rejected request was sent with. A request
// that carried no token rejected nothing.
func (t *sessionTransport) reject(ctx context.Context, token string) {
	if token == "" {
		return
	}

	var (
		cleared bool
		err     error
	)
	if c, ok := t.store.(tokenClearer); ok {
		cleared, err = c.ClearIfToken(ctx, token)
	} else {
		cleared = t.store.Current() != nil
		err = t.store.Clear(ctx)
	}
	if err != nil {
		logger.Warn(ctx, "failed to clear rejected session", "error", err)
	}
	if !cleared {
		return
	}

	metrics.RecordTeardown("rejected")
	logger.Warn(ctx, "backend rejected session token, session cleared")
	if t.onRejected != nil {
		t.onRejected(ctx)
	}
}
