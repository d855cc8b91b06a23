// Package bridge exchanges a provider-issued identity for an application
// user record and bearer token, provisioning first-time federated accounts
// on the way.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"studyhub/client/internal/apiclient"
	"studyhub/client/internal/models"
	"studyhub/client/internal/provider"
)

// Every resolution failure is terminal for the session: the caller must
// tear the session down so no half-valid {user, token} pair survives.
var (
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountNotFound    = errors.New("account not found")
	ErrProvisioningFailed = errors.New("account provisioning failed")
	ErrResolutionFailed   = errors.New("session resolution failed")
)

type Resolver struct {
	provider provider.Provider
	api      *apiclient.Client
	log      zerolog.Logger
}

func NewResolver(p provider.Provider, api *apiclient.Client, log zerolog.Logger) *Resolver {
	return &Resolver{provider: p, api: api, log: log}
}

// Resolve turns a signed-in provider identity into {user, application
// token}. A nil error guarantees both are present and consistent.
func (r *Resolver) Resolve(ctx context.Context, identity *provider.Identity) (models.User, string, error) {
	idToken, err := r.provider.IDToken(ctx, true)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: refresh id token: %w", ErrResolutionFailed, err)
	}

	user, err := r.api.UserByProviderUID(ctx, identity.UID)
	switch {
	case err == nil:
		if user.IsLocked {
			r.log.Warn().Str("uid", identity.UID).Msg("locked account attempted sign-in")
			return models.User{}, "", ErrAccountLocked
		}
		return r.exchange(ctx, idToken)

	case errors.Is(err, apiclient.ErrNotFound):
		if !identity.Kind.Federated() {
			return models.User{}, "", ErrAccountNotFound
		}
		return r.provision(ctx, identity)

	default:
		return models.User{}, "", fmt.Errorf("%w: lookup user: %w", ErrResolutionFailed, err)
	}
}

func (r *Resolver) exchange(ctx context.Context, idToken string) (models.User, string, error) {
	token, user, err := r.api.ExchangeToken(ctx, idToken)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: exchange token: %w", ErrResolutionFailed, err)
	}
	if token == "" || user.ID == 0 {
		return models.User{}, "", fmt.Errorf("%w: exchange returned incomplete session", ErrResolutionFailed)
	}
	return user, token, nil
}

// provision creates the application account for a first-time federated
// sign-in, then issues a fresh provider token and exchanges it.
func (r *Resolver) provision(ctx context.Context, identity *provider.Identity) (models.User, string, error) {
	name := identity.DisplayName
	if name == "" {
		name = identity.Email
	}

	created, err := r.api.CreateUser(ctx, identity.Email, name, identity.UID)
	if err != nil {
		r.log.Error().Err(err).Str("uid", identity.UID).Msg("auto-provisioning failed")
		return models.User{}, "", fmt.Errorf("%w: %w", ErrProvisioningFailed, err)
	}
	r.log.Info().Int64("user_id", created.ID).Str("kind", string(identity.Kind)).
		Msg("auto-provisioned federated account")

	idToken, err := r.provider.IDToken(ctx, true)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%w: refresh id token after provisioning: %w", ErrProvisioningFailed, err)
	}
	return r.exchange(ctx, idToken)
}

// Terminal reports whether err is one of the resolution failures that must
// end in full session teardown.
func Terminal(err error) bool {
	return errors.Is(err, ErrAccountLocked) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrProvisioningFailed) ||
		errors.Is(err, ErrResolutionFailed)
}

// UserMessage maps a resolution failure to its localized user-facing text.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrAccountLocked):
		return "Tài khoản của bạn đã bị khóa. Vui lòng liên hệ quản trị viên."
	case errors.Is(err, ErrAccountNotFound):
		return "Không tìm thấy tài khoản. Vui lòng đăng ký trước khi đăng nhập."
	case errors.Is(err, ErrProvisioningFailed):
		return "Không thể tạo tài khoản. Vui lòng thử lại sau."
	default:
		return "Đã xảy ra lỗi khi đăng nhập. Vui lòng thử lại sau."
	}
}
