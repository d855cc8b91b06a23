package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studyhub/client/internal/config"
	"studyhub/client/internal/models"
)

// HTTPProvider talks to an identity-toolkit style REST surface. Successful
// sign-ins cache the provider's refresh token in memory for the process
// lifetime, the analogue of the provider's own session cookie.
type HTTPProvider struct {
	cfg  config.ProviderConfig
	http *http.Client
	log  zerolog.Logger

	mu           sync.Mutex
	current      *Identity
	idToken      string
	refreshToken string
	expiresAt    time.Time
	subscribers  []SessionChangeFunc
}

func NewHTTPProvider(cfg config.ProviderConfig, log zerolog.Logger) *HTTPProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	resp, err := p.call(ctx, "accounts:signInWithPassword", body)
	if err != nil {
		return nil, err
	}
	return p.commitSignIn(resp, models.ProviderKindPassword, true)
}

func (p *HTTPProvider) SignUpWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	resp, err := p.call(ctx, "accounts:signUp", body)
	if err != nil {
		return nil, err
	}
	return p.commitSignIn(resp, models.ProviderKindPassword, false)
}

func (p *HTTPProvider) SignInWithFederated(ctx context.Context, kind models.ProviderKind, providerToken string) (*Identity, error) {
	body := map[string]any{
		"postBody":            fmt.Sprintf("access_token=%s&providerId=%s", providerToken, kind),
		"requestUri":          "http://localhost",
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}
	resp, err := p.call(ctx, "accounts:signInWithIdp", body)
	if err != nil {
		return nil, err
	}
	return p.commitSignIn(resp, kind, true)
}

func (p *HTTPProvider) commitSignIn(resp *signInResponse, kind models.ProviderKind, announce bool) (*Identity, error) {
	identity, expires, err := decodeIDToken(resp.IDToken)
	if err != nil {
		// Fall back to the response fields; the token still authorizes.
		identity = &Identity{UID: resp.LocalID, Email: resp.Email, Kind: kind}
		expires = time.Now().Add(50 * time.Minute)
	}
	identity.Kind = kind
	if identity.DisplayName == "" {
		identity.DisplayName = resp.DisplayName
	}

	p.mu.Lock()
	p.current = identity
	p.idToken = resp.IDToken
	p.refreshToken = resp.RefreshToken
	p.expiresAt = expires
	subs := append([]SessionChangeFunc(nil), p.subscribers...)
	p.mu.Unlock()

	p.log.Debug().Str("uid", identity.UID).Str("kind", string(kind)).Msg("provider sign-in")
	if announce {
		notify(subs, identity)
	}
	return identity, nil
}

func (p *HTTPProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.current = nil
	p.idToken = ""
	p.refreshToken = ""
	p.expiresAt = time.Time{}
	subs := append([]SessionChangeFunc(nil), p.subscribers...)
	p.mu.Unlock()

	if wasSignedIn {
		p.log.Debug().Msg("provider sign-out")
		notify(subs, nil)
	}
	return nil
}

func (p *HTTPProvider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	p.mu.Lock()
	token := p.idToken
	refresh := p.refreshToken
	fresh := time.Now().Add(time.Minute).Before(p.expiresAt)
	p.mu.Unlock()

	if token == "" && refresh == "" {
		return "", &AuthError{Kind: ErrKindInvalidCredential, code: "NOT_SIGNED_IN"}
	}
	if token != "" && fresh && !forceRefresh {
		return token, nil
	}
	return p.refreshIDToken(ctx, refresh)
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

func (p *HTTPProvider) refreshIDToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := p.cfg.TokenURL + "?key=" + url.QueryEscape(p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := p.http.Do(req)
	if err != nil {
		return "", networkAuthError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", p.decodeError(httpResp)
	}

	var resp refreshResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}

	_, expires, decodeErr := decodeIDToken(resp.IDToken)
	if decodeErr != nil {
		expires = time.Now().Add(50 * time.Minute)
	}

	p.mu.Lock()
	p.idToken = resp.IDToken
	if resp.RefreshToken != "" {
		p.refreshToken = resp.RefreshToken
	}
	p.expiresAt = expires
	p.mu.Unlock()

	return resp.IDToken, nil
}

func (p *HTTPProvider) OnSessionChange(fn SessionChangeFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

func (p *HTTPProvider) call(ctx context.Context, action string, body map[string]any) (*signInResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", action, err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", p.cfg.BaseURL, action, url.QueryEscape(p.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.http.Do(req)
	if err != nil {
		return nil, networkAuthError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, p.decodeError(httpResp)
	}

	var resp signInResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}
	return &resp, nil
}

type providerErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *HTTPProvider) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body providerErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		// Messages can carry suffixes like "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
		code := body.Error.Message
		if idx := strings.IndexAny(code, " :"); idx > 0 {
			code = code[:idx]
		}
		p.log.Warn().Str("code", code).Int("status", resp.StatusCode).Msg("provider rejected request")
		return mapProviderCode(code)
	}

	p.log.Warn().Int("status", resp.StatusCode).Msg("provider returned unparseable error")
	return &AuthError{Kind: ErrKindUnknown, code: fmt.Sprintf("http_%d", resp.StatusCode)}
}

func notify(subs []SessionChangeFunc, identity *Identity) {
	for _, fn := range subs {
		fn(identity)
	}
}
