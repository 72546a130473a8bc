package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"autogest/internal/domain/auth"
	"autogest/internal/domain/rbac"
	"autogest/internal/infrastructure/http/console/dto"
)

// AuthHandler serves login, logout and registration.
type AuthHandler struct {
	*BaseHandler
	gateway *auth.Gateway
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, gateway *auth.Gateway) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		gateway:     gateway,
	}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/login", h.LoginPage)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/register", h.RegisterPage)
	rg.POST("/register", h.Register)
}

type loginPage struct {
	dto.Layout
	Correo  string
	Error   string
	Success string
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	page := loginPage{Layout: dto.NewLayout("Iniciar Sesión", h.Session(c), "")}
	if c.Query("registered") != "" {
		page.Success = "Usuario registrado exitosamente. Ahora puedes iniciar sesión."
	}
	c.HTML(http.StatusOK, "login.html", page)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := h.BindForm(c, &form, "Correo y contraseña son obligatorios"); err != nil {
		msg, status := messageOf(err, auth.LoginFailedMessage)
		c.HTML(status, "login.html", loginPage{
			Layout: dto.NewLayout("Iniciar Sesión", h.Session(c), ""),
			Correo: form.Correo,
			Error:  msg,
		})
		return
	}

	_, err := h.gateway.Login(c.Request.Context(), form.ToCredentials())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// The browser went away; nothing to render.
		c.Abort()
		return
	}
	if err != nil {
		msg, status := messageOf(err, auth.LoginFailedMessage)
		c.HTML(status, "login.html", loginPage{
			Layout: dto.NewLayout("Iniciar Sesión", h.Session(c), ""),
			Correo: form.Correo,
			Error:  msg,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, rbac.RouteDashboard)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, h.gateway.Logout(c.Request.Context()))
}

type registerPage struct {
	dto.Layout
	Form  dto.RegisterForm
	Error string
}

// RegisterPage handles GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", registerPage{
		Layout: dto.NewLayout("Crear Cuenta", h.Session(c), ""),
	})
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if err := h.BindForm(c, &form, auth.RegisterFailedMessage); err != nil {
		h.renderRegister(c, form, err)
		return
	}

	if err := h.gateway.Register(c.Request.Context(), form.ToRegisterRequest()); err != nil {
		h.renderRegister(c, form, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (h *AuthHandler) renderRegister(c *gin.Context, form dto.RegisterForm, err error) {
	msg, status := messageOf(err, auth.RegisterFailedMessage)
	c.HTML(status, "register.html", registerPage{
		Layout: dto.NewLayout("Crear Cuenta", h.Session(c), ""),
		Form:   form.Blank(),
		Error:  msg,
	})
}
