// Package guard decides what a navigation to a protected console view
// renders. Every evaluation starts from the current session; the guard keeps
// no state between navigations.
package guard

import (
	"autogest/internal/domain/rbac"
	"autogest/internal/domain/session"
)

// State is the outcome of one guard evaluation.
type State int

const (
	// Loading means session bootstrap has not completed yet.
	Loading State = iota
	// Unauthenticated means there is no session; redirect to login.
	Unauthenticated
	// Authorized means the wrapped view renders.
	Authorized
	// Forbidden means a session exists but the check failed; render denial.
	Forbidden
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authorized:
		return "authorized"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Reason tells which check produced a Forbidden decision.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonRoute is a failed route capability check.
	ReasonRoute
	// ReasonRole is a failed exact-role requirement.
	ReasonRole
)

// Rule is what a protected view requires. An empty Rule only requires a session.
type Rule struct {
	// Route, when set, is checked with rbac.CanAccessRoute.
	Route string
	// RequiredRole, when set, must equal the session role exactly.
	RequiredRole rbac.Role
}

// RuleFor builds the guard rule for a console route: exact-role routes get a
// role requirement, every other known route a route check.
func RuleFor(path string) Rule {
	r, ok := rbac.Rule(path)
	if ok && r.ExactRole != rbac.RoleNone {
		return Rule{RequiredRole: r.ExactRole}
	}
	return Rule{Route: path}
}

// Decision is the result of Evaluate.
type Decision struct {
	State        State
	Reason       Reason
	Role         rbac.Role
	RequiredRole rbac.Role
	Route        string
}

// Evaluate runs the guard for one navigation. loaded reports whether session
// bootstrap has completed; sess is the current session or nil.
// The route check runs before the exact-role check.
func Evaluate(loaded bool, sess *session.Session, rule Rule) Decision {
	d := Decision{Route: rule.Route, RequiredRole: rule.RequiredRole}

	if !loaded {
		d.State = Loading
		return d
	}
	if sess == nil {
		d.State = Unauthenticated
		return d
	}

	d.Role = sess.Role
	if rule.Route != "" && !rbac.CanAccessRoute(sess.Role, rule.Route) {
		d.State = Forbidden
		d.Reason = ReasonRoute
		return d
	}
	if rule.RequiredRole != rbac.RoleNone && sess.Role != rule.RequiredRole {
		d.State = Forbidden
		d.Reason = ReasonRole
		return d
	}

	d.State = Authorized
	return d
}
