package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/rbac"
	"autogest/internal/domain/session"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   atomic.Int32
	result  *LoginResult
	err     error
	block   chan struct{}
	created []NewUser
}

func (f *fakeBackend) Authenticate(ctx context.Context, creds Credentials) (*LoginResult, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, u NewUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, u)
	return nil
}

func newTestGateway(b Backend) (*Gateway, *session.Manager) {
	store := session.NewManager(session.NewMemoryStorage(), session.DefaultKeys())
	return NewGateway(b, store, DefaultGatewayConfig()), store
}

func adminResult() *LoginResult {
	return &LoginResult{Token: "tok-1", UID: "u1", Nombre: "Ana", Correo: "ana@x.com", Rol: "Administrador"}
}

func TestGateway_LoginSuccess(t *testing.T) {
	g, store := newTestGateway(&fakeBackend{result: adminResult()})

	sess, err := g.Login(context.Background(), Credentials{Correo: "ana@x.com", Contrasena: "secret"})
	require.NoError(t, err)

	want := &session.Session{UserID: "u1", DisplayName: "Ana", Email: "ana@x.com", Role: rbac.RoleAdministrador, Token: "tok-1"}
	assert.Equal(t, want, sess)
	assert.Equal(t, want, store.Current())
}

func TestGateway_LoginFailureMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{"backend message", apperror.NewUnauthorized("Credenciales inválidas"), apperror.CodeUnauthorized, "Credenciales inválidas"},
		{"no message", apperror.NewUnauthorized(""), apperror.CodeUnauthorized, LoginFailedMessage},
		{"plain error", errors.New("boom"), apperror.CodeUnauthorized, LoginFailedMessage},
		{"unreachable", apperror.NewBackendUnavailable(errors.New("dial")), apperror.CodeBackendUnavailable, LoginFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, store := newTestGateway(&fakeBackend{err: tt.err})

			_, err := g.Login(context.Background(), Credentials{Correo: "a@b.co", Contrasena: "x"})
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Nil(t, store.Current())
		})
	}
}

func TestGateway_LoginFailureKeepsExistingSession(t *testing.T) {
	b := &fakeBackend{result: adminResult()}
	g, store := newTestGateway(b)
	ctx := context.Background()

	_, err := g.Login(ctx, Credentials{Correo: "ana@x.com", Contrasena: "secret"})
	require.NoError(t, err)

	b.err = apperror.NewUnauthorized("Credenciales inválidas")
	_, err = g.Login(ctx, Credentials{Correo: "otro@x.com", Contrasena: "bad"})
	require.Error(t, err)

	require.NotNil(t, store.Current())
	assert.Equal(t, "tok-1", store.Current().Token)
}

func TestGateway_LoginWithoutTokenFails(t *testing.T) {
	g, store := newTestGateway(&fakeBackend{result: &LoginResult{UID: "u1", Rol: "Cliente"}})

	_, err := g.Login(context.Background(), Credentials{Correo: "a@b.co", Contrasena: "x"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, LoginFailedMessage, appErr.Message)
	assert.Nil(t, store.Current())
}

func TestGateway_AbandonedLoginDoesNotInstallSession(t *testing.T) {
	b := &fakeBackend{result: adminResult(), block: make(chan struct{})}
	g, store := newTestGateway(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := g.Login(ctx, Credentials{Correo: "ana@x.com", Contrasena: "secret"})
		done <- err
	}()

	require.Eventually(t, func() bool { return b.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	close(b.block)

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, store.Current())
}

func TestGateway_ConcurrentIdenticalLoginsShareExchange(t *testing.T) {
	b := &fakeBackend{result: adminResult(), block: make(chan struct{})}
	g, _ := newTestGateway(b)
	creds := Credentials{Correo: "ana@x.com", Contrasena: "secret"}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Login(context.Background(), creds)
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return b.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(b.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestGateway_SharedLoginSurvivesFirstCallerLeaving(t *testing.T) {
	b := &fakeBackend{result: adminResult(), block: make(chan struct{})}
	g, store := newTestGateway(b)
	creds := Credentials{Correo: "ana@x.com", Contrasena: "secret"}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := g.Login(firstCtx, creds)
		first <- err
	}()
	require.Eventually(t, func() bool { return b.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		sess *session.Session
		err  error
	}
	second := make(chan result, 1)
	go func() {
		sess, err := g.Login(context.Background(), creds)
		second <- result{sess, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(b.block)
	got := <-second
	require.NoError(t, got.err)
	require.NotNil(t, got.sess)
	assert.Equal(t, "tok-1", got.sess.Token)
	assert.Equal(t, "tok-1", store.Current().Token)
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestGateway_Logout(t *testing.T) {
	g, store := newTestGateway(&fakeBackend{result: adminResult()})
	ctx := context.Background()

	_, err := g.Login(ctx, Credentials{Correo: "ana@x.com", Contrasena: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "/login", g.Logout(ctx))
	assert.Nil(t, store.Current())

	// Logging out again is harmless.
	assert.Equal(t, "/login", g.Logout(ctx))
	assert.Nil(t, store.Current())
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Nombre:              "Carla",
		Correo:              "carla@x.com",
		Contrasena:          "secreto",
		ConfirmarContrasena: "secreto",
		Direccion:           "Calle 1",
		Telefono:            "555-0101",
	}
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantMsg string
	}{
		{"valid", func(r *RegisterRequest) {}, ""},
		{"mismatch", func(r *RegisterRequest) { r.ConfirmarContrasena = "otro123" }, "Las contraseñas no coinciden"},
		{"short", func(r *RegisterRequest) { r.Contrasena, r.ConfirmarContrasena = "abc", "abc" }, "La contraseña debe tener al menos 6 caracteres"},
		{"blank name", func(r *RegisterRequest) { r.Nombre = "  " }, "Todos los campos son obligatorios"},
		{"blank phone", func(r *RegisterRequest) { r.Telefono = "" }, "Todos los campos son obligatorios"},
		{"bad email", func(r *RegisterRequest) { r.Correo = "carla" }, "El correo electrónico no es válido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)
			err := r.Validate(6)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestGateway_Register(t *testing.T) {
	b := &fakeBackend{}
	g, store := newTestGateway(b)

	require.NoError(t, g.Register(context.Background(), validRegistration()))
	require.Len(t, b.created, 1)
	assert.Equal(t, "carla@x.com", b.created[0].Correo)
	assert.Nil(t, store.Current())

	r := validRegistration()
	r.ConfirmarContrasena = "nope123"
	require.Error(t, g.Register(context.Background(), r))
	assert.Len(t, b.created, 1)
}

func TestGateway_RegisterBackendFailure(t *testing.T) {
	g, _ := newTestGateway(&fakeBackend{err: apperror.NewBackend(409, "")})

	err := g.Register(context.Background(), validRegistration())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, RegisterFailedMessage, appErr.Message)
}
