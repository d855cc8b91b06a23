// Package provider wraps the third-party authentication service. It owns
// the provider-issued credential and nothing else; exchanging it for an
// application session is the bridge's job.
package provider

import (
	"context"

	"studyhub/client/internal/models"
)

// Identity is the transient signed-in credential from the provider. It is
// consumed once per session-change event and never persisted.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Kind        models.ProviderKind
}

// SessionChangeFunc receives the new identity on every provider state
// transition. A nil identity means signed out.
type SessionChangeFunc func(identity *Identity)

type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
	// SignUpWithPassword creates the provider account and caches its
	// credential without emitting a session-change event; the register
	// flow commits the session explicitly once the application account
	// exists.
	SignUpWithPassword(ctx context.Context, email, password string) (*Identity, error)
	// SignInWithFederated completes a federated sign-in using the access
	// token obtained from the external identity provider's own flow.
	SignInWithFederated(ctx context.Context, kind models.ProviderKind, providerToken string) (*Identity, error)
	SignOut(ctx context.Context) error

	// IDToken returns the current identity token, refreshing it against the
	// provider when forceRefresh is set or the cached token has expired.
	IDToken(ctx context.Context, forceRefresh bool) (string, error)

	// OnSessionChange registers a callback fired once per actual provider
	// state transition (sign-in, sign-out). Registration is for the life of
	// the process.
	OnSessionChange(fn SessionChangeFunc)
}
