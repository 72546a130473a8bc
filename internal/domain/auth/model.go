// Package auth provides the console's authentication gateway: credential
// exchange with the rental backend, session creation and teardown, and
// operator self-registration.
package auth

import (
	"regexp"
	"strconv"
	"strings"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/rbac"
	"autogest/internal/domain/session"
)

// Operator-facing messages.
const (
	LoginFailedMessage    = "Error en el login"
	RegisterFailedMessage = "Error al crear el usuario"
)

// Credentials for login, in the backend's wire shape.
type Credentials struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

// LoginResult is the backend's successful login payload.
type LoginResult struct {
	Token  string `json:"token"`
	UID    string `json:"uid"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Rol    string `json:"rol"`
}

// Session builds a session from the payload. The role is taken verbatim.
func (r *LoginResult) Session() *session.Session {
	return &session.Session{
		UserID:      r.UID,
		DisplayName: r.Nombre,
		Email:       r.Correo,
		Role:        rbac.Role(r.Rol),
		Token:       r.Token,
	}
}

// RegisterRequest is the self-registration form.
type RegisterRequest struct {
	Nombre              string
	Correo              string
	Contrasena          string
	ConfirmarContrasena string
	Direccion           string
	Telefono            string
}

// NewUser is the account creation payload. It carries no role; the backend
// assigns Cliente.
type NewUser struct {
	Nombre     string `json:"nombre"`
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
	Direccion  string `json:"direccion"`
	Telefono   string `json:"telefono"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the registration form the way the form itself does:
// matching passwords, minimum length, then required fields.
func (r RegisterRequest) Validate(minPasswordLength int) error {
	if r.Contrasena != r.ConfirmarContrasena {
		return apperror.NewValidation("Las contraseñas no coinciden").
			WithDetail("field", "confirmarContrasena")
	}
	if len([]rune(r.Contrasena)) < minPasswordLength {
		return apperror.NewValidation("La contraseña debe tener al menos " + strconv.Itoa(minPasswordLength) + " caracteres").
			WithDetail("field", "contrasena")
	}
	for _, v := range []string{r.Nombre, r.Correo, r.Direccion, r.Telefono} {
		if strings.TrimSpace(v) == "" {
			return apperror.NewValidation("Todos los campos son obligatorios")
		}
	}
	if !emailPattern.MatchString(r.Correo) {
		return apperror.NewValidation("El correo electrónico no es válido").
			WithDetail("field", "correo")
	}
	return nil
}

// NewUser converts the form into the creation payload.
func (r RegisterRequest) NewUser() NewUser {
	return NewUser{
		Nombre:     strings.TrimSpace(r.Nombre),
		Correo:     strings.TrimSpace(r.Correo),
		Contrasena: r.Contrasena,
		Direccion:  strings.TrimSpace(r.Direccion),
		Telefono:   strings.TrimSpace(r.Telefono),
	}
}
