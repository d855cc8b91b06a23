// Package localstore persists the signed-in session across restarts. It is
// the headless analogue of browser local storage: exactly two keys, the
// application token and the serialized user record, always written and
// cleared together.
package localstore

import (
	"context"
	"errors"
)

var ErrNoSession = errors.New("no persisted session")

type Store interface {
	// SaveSession writes both keys atomically, replacing any previous session.
	SaveSession(ctx context.Context, token string, userJSON []byte) error
	// LoadSession returns the persisted pair, or ErrNoSession when absent.
	LoadSession(ctx context.Context) (token string, userJSON []byte, err error)
	// Clear removes both keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	Close() error
}
