// Package session owns the console's single active identity: the current
// user record and its bearer token, its persisted form, and its lifecycle.
package session

import (
	"autogest/internal/domain/rbac"
)

// Session is the authenticated identity plus its bearer credential.
// Role keeps the backend's raw value; decision functions deny anything
// outside the closed role set.
type Session struct {
	UserID      string
	DisplayName string
	Email       string
	Role        rbac.Role
	Token       string
}

// Identity is the persisted user record stored under the user key.
type Identity struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Rol    string `json:"rol"`
}

// Identity returns the persisted form of the session's user.
func (s *Session) Identity() Identity {
	return Identity{
		ID:     s.UserID,
		Nombre: s.DisplayName,
		Correo: s.Email,
		Rol:    string(s.Role),
	}
}

// Complete reports whether the session carries the minimum a session needs:
// a user id and a token.
func (s *Session) Complete() bool {
	return s != nil && s.UserID != "" && s.Token != ""
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// FromIdentity rebuilds a session from its persisted parts.
func FromIdentity(id Identity, token string) *Session {
	return &Session{
		UserID:      id.ID,
		DisplayName: id.Nombre,
		Email:       id.Correo,
		Role:        rbac.Role(id.Rol),
		Token:       token,
	}
}
