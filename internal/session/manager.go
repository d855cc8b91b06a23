// Package session owns the client's {user, token, loading} state for the
// lifetime of the process. All mutation goes through Login, Logout, or the
// provider session-change handler; everything else reads snapshots.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studyhub/client/internal/localstore"
	"studyhub/client/internal/models"
	"studyhub/client/internal/provider"
)

const resolveTimeout = 30 * time.Second

// Resolver is implemented by bridge.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, identity *provider.Identity) (models.User, string, error)
}

// Snapshot is a copy-on-read view of the session. While Loading is true
// the pair must not be trusted; once it is false, User and Token are
// either both set or both empty.
type Snapshot struct {
	User    *models.User
	Token   string
	Loading bool
}

// Authenticated reports whether a valid {user, token} pair exists right
// now. Both must be present simultaneously.
func (s Snapshot) Authenticated() bool {
	return !s.Loading && s.User != nil && s.Token != ""
}

type Manager struct {
	provider provider.Provider
	resolver Resolver
	store    localstore.Store
	log      zerolog.Logger

	mu           sync.Mutex
	user         *models.User
	token        string
	loading      bool
	generation   uint64
	lastIdentity *provider.Identity
	lastErr      error
}

func NewManager(p provider.Provider, resolver Resolver, store localstore.Store, log zerolog.Logger) *Manager {
	m := &Manager{
		provider: p,
		resolver: resolver,
		store:    store,
		log:      log,
		loading:  true,
	}
	p.OnSessionChange(m.handleSessionChange)
	return m
}

// Start restores a persisted session, the reload path of a browser
// client. It always leaves loading false.
func (m *Manager) Start(ctx context.Context) {
	token, userJSON, err := m.store.LoadSession(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		if !errors.Is(err, localstore.ErrNoSession) {
			m.log.Error().Err(err).Msg("restore session failed, starting anonymous")
		}
		return
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil || user.ID == 0 || token == "" {
		m.log.Error().Err(err).Msg("persisted session is malformed, discarding")
		go m.clearStorage()
		return
	}

	m.user = &user
	m.token = token
	m.log.Info().Int64("user_id", user.ID).Msg("session restored from storage")
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{Token: m.token, Loading: m.loading}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// Token implements apiclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Login commits a resolved session. Malformed input is logged loudly and
// ignored without touching existing state; a bad payload must never crash
// the client.
func (m *Manager) Login(user *models.User, token string) {
	if user == nil || user.ID == 0 || token == "" {
		m.log.Error().
			Bool("has_user", user != nil).
			Bool("has_token", token != "").
			Msg("rejected malformed login payload")
		return
	}

	u := *user
	m.mu.Lock()
	m.user = &u
	m.token = token
	m.loading = false
	m.mu.Unlock()

	m.persist(u, token)
	m.log.Info().Int64("user_id", u.ID).Msg("session committed")
}

// Logout signs out of the provider, then unconditionally clears memory and
// durable storage; the clear runs even when provider sign-out fails.
// Calling Logout on an already-anonymous session is a no-op that still
// clears storage.
func (m *Manager) Logout(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.user = nil
		m.token = ""
		m.loading = false
		m.lastIdentity = nil
		m.mu.Unlock()
		m.clearStorage()
	}()

	if err := m.provider.SignOut(ctx); err != nil {
		m.log.Error().Err(err).Msg("provider sign-out failed, clearing session anyway")
	}
}

// handleSessionChange is the single entry point of the resolution
// pipeline. Each provider event bumps the generation; a resolution that
// finishes after a newer event started is discarded.
func (m *Manager) handleSessionChange(identity *provider.Identity) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.lastIdentity = identity

	if identity == nil {
		m.user = nil
		m.token = ""
		m.loading = false
		m.mu.Unlock()
		m.clearStorage()
		m.log.Debug().Msg("provider signed out, session cleared")
		return
	}

	m.loading = true
	m.mu.Unlock()

	m.resolve(gen, identity)
}

func (m *Manager) resolve(gen uint64, identity *provider.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	user, token, err := m.resolver.Resolve(ctx, identity)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		m.log.Warn().Uint64("generation", gen).Msg("discarding stale session resolution")
		return
	}

	if err != nil {
		m.user = nil
		m.token = ""
		m.loading = false
		m.lastErr = err
		m.mu.Unlock()
		m.clearStorage()
		m.log.Error().Err(err).Str("uid", identity.UID).Msg("session resolution failed, torn down")
		return
	}

	u := user
	m.user = &u
	m.token = token
	m.loading = false
	m.lastErr = nil
	m.mu.Unlock()

	m.persist(u, token)
	m.log.Info().Int64("user_id", u.ID).Msg("session resolved")
}

// LastError returns the failure of the most recent resolution, or nil
// after a successful one. The sign-in view maps it to user-facing text.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Revalidate re-runs the resolution for the current provider identity. The
// scheduler uses it to catch accounts locked mid-session.
func (m *Manager) Revalidate(ctx context.Context) {
	m.mu.Lock()
	identity := m.lastIdentity
	if identity == nil || m.loading {
		m.mu.Unlock()
		return
	}
	m.generation++
	gen := m.generation
	m.loading = true
	m.mu.Unlock()

	m.resolve(gen, identity)
}

func (m *Manager) persist(user models.User, token string) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		m.log.Error().Err(err).Msg("marshal user for storage failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.SaveSession(ctx, token, userJSON); err != nil {
		m.log.Error().Err(err).Msg("persist session failed")
	}
}

func (m *Manager) clearStorage() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("clear session storage failed")
	}
}
