package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/auth"
	"autogest/internal/domain/rbac"
	"autogest/internal/domain/session"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newStore() *session.Manager {
	return session.NewManager(session.NewMemoryStorage(), session.DefaultKeys())
}

func installSession(t *testing.T, store *session.Manager, token string) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), &session.Session{
		UserID: "u1", DisplayName: "Ana", Email: "ana@x.com", Role: rbac.RoleEmpleado, Token: token,
	}))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"uid":"v1","marca":"Toyota","modelo":"Corolla","estado":"Disponible","precioDia":45.5}]`))
	}))
	defer srv.Close()

	store := newStore()
	c := NewClient(testConfig(srv.URL), store)

	_, err := c.ListVehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", gotAuth.Load())

	installSession(t, store, "abc")
	vehicles, err := c.ListVehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth.Load())

	require.Len(t, vehicles, 1)
	assert.Equal(t, "v1", vehicles[0].ID())
	assert.True(t, vehicles[0].Available())
	assert.InDelta(t, 45.5, vehicles[0].PrecioDia, 0.001)
}

func TestClient_RejectedTokenClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newStore()
	installSession(t, store, "stale")

	var fired atomic.Int32
	c := NewClient(testConfig(srv.URL), store, WithSessionRejectedHook(func(context.Context) {
		fired.Add(1)
	}))

	_, err := c.ListReservations(context.Background())
	assert.True(t, apperror.IsSessionExpired(err))
	assert.Nil(t, store.Current())
	assert.Equal(t, int32(1), fired.Load())

	// With no session left, a further 401 does not fire the hook again.
	_, err = c.ListReservations(context.Background())
	assert.True(t, apperror.IsSessionExpired(err))
	assert.Equal(t, int32(1), fired.Load())
}

func TestClient_AnonymousRejectionKeepsLaterSession(t *testing.T) {
	store := newStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A login lands while this anonymous request is in flight.
		installSession(t, store, "fresh")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := NewClient(testConfig(srv.URL), store, WithSessionRejectedHook(func(context.Context) {
		fired.Add(1)
	}))

	_, err := c.ListVehicles(context.Background())
	assert.True(t, apperror.IsSessionExpired(err))
	require.NotNil(t, store.Current())
	assert.Equal(t, "fresh", store.Current().Token)
	assert.Equal(t, int32(0), fired.Load())
}

func TestClient_PingIsAnonymous(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newStore()
	installSession(t, store, "abc")
	var fired atomic.Int32
	c := NewClient(testConfig(srv.URL), store, WithSessionRejectedHook(func(context.Context) {
		fired.Add(1)
	}))

	require.Error(t, c.Ping(context.Background()))
	assert.Equal(t, "", gotAuth.Load())
	require.NotNil(t, store.Current())
	assert.Equal(t, "abc", store.Current().Token)
	assert.Equal(t, int32(0), fired.Load())
}

func TestClient_LoginRejectionKeepsSession(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Credenciales inválidas"}`))
	}))
	defer srv.Close()

	store := newStore()
	installSession(t, store, "current")
	c := NewClient(testConfig(srv.URL), store)

	_, err := c.Authenticate(context.Background(), auth.Credentials{Correo: "x@y.co", Contrasena: "bad"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	assert.Equal(t, "Credenciales inválidas", appErr.Message)

	assert.Equal(t, "", gotAuth.Load())
	require.NotNil(t, store.Current())
	assert.Equal(t, "current", store.Current().Token)
}

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t1","uid":"u9","nombre":"Ana","correo":"ana@x.com","rol":"Administrador"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL+"/api/"), newStore())
	res, err := c.Authenticate(context.Background(), auth.Credentials{Correo: "ana@x.com", Contrasena: "pw"})
	require.NoError(t, err)
	assert.Equal(t, &auth.LoginResult{Token: "t1", UID: "u9", Nombre: "Ana", Correo: "ana@x.com", Rol: "Administrador"}, res)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"forbidden", http.StatusForbidden, ``, apperror.CodeForbidden, "No tienes permisos para realizar esta acción"},
		{"not found", http.StatusNotFound, `{"message":"Reserva no encontrada"}`, apperror.CodeNotFound, "Reserva no encontrada"},
		{"conflict", http.StatusConflict, `{"message":"El correo ya está registrado"}`, apperror.CodeValidation, "El correo ya está registrado"},
		{"server", http.StatusInternalServerError, `oops`, apperror.CodeBackend, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(testConfig(srv.URL), newStore())
			err := c.CreateUser(context.Background(), auth.NewUser{Nombre: "Carla"})
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestClient_ReservationsByUserEscapesID(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.EscapedPath())
		_, _ = w.Write([]byte(`[{"uid":"r1","usuarioUid":"a b","totalPrecio":90,"vehiculos":[{"uid":"v1","placa":"ABC-1"}]}]`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), newStore())
	res, err := c.ListReservationsByUser(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/reserva/usuario/a%20b", gotPath.Load())

	require.Len(t, res, 1)
	assert.Equal(t, "Pendiente", res[0].Status())
	v, ok := res[0].Vehicle()
	require.True(t, ok)
	assert.Equal(t, "ABC-1", v.Placa)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureRatio = 0.5
	cfg.Breaker.Timeout = time.Minute
	c := NewClient(cfg, newStore())

	for range 2 {
		err := c.Ping(context.Background())
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeBackend, appErr.Code)
	}

	err := c.Ping(context.Background())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBackendUnavailable, appErr.Code)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, "open", c.BreakerState())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureRatio = 0.5
	c := NewClient(cfg, newStore())

	for range 4 {
		_ = c.Ping(context.Background())
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestClient_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	store := newStore()
	installSession(t, store, "abc")
	c := NewClient(testConfig(url), store)

	err := c.Ping(context.Background())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBackendUnavailable, appErr.Code)
	assert.NotNil(t, store.Current())
}
