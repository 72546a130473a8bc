// Package dto holds the console's form bindings and page view models.
package dto

import "autogest/internal/domain/auth"

// LoginForm is the login page submission.
type LoginForm struct {
	Correo     string `form:"correo" binding:"required"`
	Contrasena string `form:"contrasena" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (f *LoginForm) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Correo:     f.Correo,
		Contrasena: f.Contrasena,
	}
}

// RegisterForm is the registration page submission. Field rules live in
// auth.RegisterRequest.Validate so the messages match the form's own.
type RegisterForm struct {
	Nombre              string `form:"nombre"`
	Correo              string `form:"correo"`
	Contrasena          string `form:"contrasena"`
	ConfirmarContrasena string `form:"confirmarContrasena"`
	Direccion           string `form:"direccion"`
	Telefono            string `form:"telefono"`
}

// ToRegisterRequest converts to the domain request.
func (f *RegisterForm) ToRegisterRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Nombre:              f.Nombre,
		Correo:              f.Correo,
		Contrasena:          f.Contrasena,
		ConfirmarContrasena: f.ConfirmarContrasena,
		Direccion:           f.Direccion,
		Telefono:            f.Telefono,
	}
}

// Blank returns the form with passwords removed, for re-rendering.
func (f RegisterForm) Blank() RegisterForm {
	f.Contrasena = ""
	f.ConfirmarContrasena = ""
	return f
}
