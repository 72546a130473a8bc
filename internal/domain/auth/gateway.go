package auth

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/session"
	"autogest/internal/metrics"
	"autogest/pkg/logger"
)

var tracer = otel.Tracer("autogest/auth")

// Backend is the part of the rental backend the gateway talks to.
type Backend interface {
	// Authenticate exchanges credentials for a token and identity.
	Authenticate(ctx context.Context, creds Credentials) (*LoginResult, error)
	// CreateUser creates a Cliente account.
	CreateUser(ctx context.Context, u NewUser) error
}

// GatewayConfig holds gateway configuration.
type GatewayConfig struct {
	LoginPath         string
	PasswordMinLength int
}

// DefaultGatewayConfig returns default configuration.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		LoginPath:         "/login",
		PasswordMinLength: 6,
	}
}

// Gateway is the only place sessions are created or destroyed on operator
// request.
type Gateway struct {
	backend Backend
	store   session.Store
	config  GatewayConfig

	flight singleflight.Group
	// mu serializes session mutation between login and logout.
	mu sync.Mutex
}

// NewGateway creates a new auth gateway.
func NewGateway(backend Backend, store session.Store, config GatewayConfig) *Gateway {
	return &Gateway{
		backend: backend,
		store:   store,
		config:  config,
	}
}

// Login exchanges credentials with the backend and installs the resulting
// session. On failure the session is left exactly as it was.
// Identical concurrent submissions share one backend exchange.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	// The exchange outlives whichever caller started it; the backend client
	// timeout bounds it. Each caller waits on its own context.
	ch := g.flight.DoChan(creds.Correo+"\x00"+creds.Contrasena, func() (any, error) {
		return g.backend.Authenticate(context.WithoutCancel(ctx), creds)
	})

	var out singleflight.Result
	select {
	case <-ctx.Done():
		return nil, g.loginError(ctx, creds, ctx.Err())
	case out = <-ch:
	}

	span.SetAttributes(attribute.Bool("auth.shared", out.Shared))
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, "login failed")
		return nil, g.loginError(ctx, creds, out.Err)
	}

	res, _ := out.Val.(*LoginResult)
	if res == nil || res.Token == "" || res.UID == "" {
		metrics.RecordLogin("rejected")
		logger.Warn(ctx, "login response carried no session", "correo", creds.Correo)
		return nil, apperror.NewUnauthorized(LoginFailedMessage)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// The operator may have navigated away or logged out while the exchange
	// was in flight.
	if err := ctx.Err(); err != nil {
		metrics.RecordLogin("superseded")
		logger.Info(ctx, "discarding login result for abandoned request", "correo", creds.Correo)
		return nil, err
	}

	sess := res.Session()
	if err := g.store.Set(ctx, sess); err != nil {
		metrics.RecordLogin("error")
		logger.Error(ctx, "failed to persist session", "error", err)
		return nil, apperror.NewInternal(err)
	}

	metrics.RecordLogin("success")
	logger.Info(ctx, "user logged in", "user_id", sess.UserID, "role", sess.Role)
	return sess.Clone(), nil
}

func (g *Gateway) loginError(ctx context.Context, creds Credentials, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordLogin("superseded")
		return err
	}

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		metrics.RecordLogin("error")
		logger.Error(ctx, "login failed", "correo", creds.Correo, "error", err)
		return apperror.NewUnauthorized(LoginFailedMessage).WithCause(err)
	}

	if appErr.Code == apperror.CodeBackendUnavailable {
		metrics.RecordLogin("error")
		logger.Warn(ctx, "backend unavailable during login", "error", err)
		out := apperror.NewBackendUnavailable(err)
		out.Message = LoginFailedMessage
		return out
	}

	msg := appErr.Message
	if msg == "" {
		msg = LoginFailedMessage
	}
	metrics.RecordLogin("rejected")
	logger.Info(ctx, "login rejected", "correo", creds.Correo, "reason", msg)
	return apperror.NewUnauthorized(msg).WithCause(err)
}

// Logout destroys the current session and returns the path the console
// navigates to. It never fails from the operator's point of view.
func (g *Gateway) Logout(ctx context.Context) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev := g.store.Current()
	if err := g.store.Clear(ctx); err != nil {
		logger.Warn(ctx, "failed to clear persisted session", "error", err)
	}
	if prev != nil {
		metrics.RecordTeardown("logout")
		logger.Info(ctx, "user logged out", "user_id", prev.UserID)
	}
	return g.config.LoginPath
}

// Register validates the form and creates a Cliente account. It does not
// log the new user in.
func (g *Gateway) Register(ctx context.Context, req RegisterRequest) error {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	if err := req.Validate(g.config.PasswordMinLength); err != nil {
		return err
	}

	if err := g.backend.CreateUser(ctx, req.NewUser()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register failed")
		logger.Warn(ctx, "user registration failed", "correo", req.Correo, "error", err)

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			return apperror.NewValidation(RegisterFailedMessage).WithCause(err)
		}
		if appErr.Message == "" {
			appErr.Message = RegisterFailedMessage
		}
		return appErr
	}

	logger.Info(ctx, "user registered", "correo", req.Correo)
	return nil
}
