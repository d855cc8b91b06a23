// Package guard decides whether the current session may enter a view.
package guard

import (
	"studyhub/client/internal/session"
)

type Requirement string

const (
	RequireNone     Requirement = "none"
	RequireAuth     Requirement = "authenticated"
	RequireAdmin    Requirement = "authenticated-admin"
	RequireNonAdmin Requirement = "authenticated-non-admin"
)

const (
	SignInPath  = "/login"
	DefaultPath = "/"
)

type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision             { return Decision{Allow: true} }
func redirect(to string) Decision { return Decision{RedirectTo: to} }

// Evaluate applies the guard rules in order: missing session first, then
// role checks. A session is only valid when user and token are present
// simultaneously; a transiently inconsistent session never passes.
func Evaluate(snap session.Snapshot, req Requirement) Decision {
	if req == RequireNone || req == "" {
		return allow()
	}

	if !snap.Authenticated() {
		return redirect(SignInPath)
	}

	switch req {
	case RequireAdmin:
		if !snap.User.IsAdmin {
			return redirect(DefaultPath)
		}
	case RequireNonAdmin:
		if snap.User.IsAdmin {
			return redirect(DefaultPath)
		}
	}

	return allow()
}
