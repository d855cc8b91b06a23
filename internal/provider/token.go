package provider

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studyhub/client/internal/models"
)

type idTokenClaims struct {
	Email    string `json:"email"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

// decodeIDToken reads the claims the client needs out of a provider ID
// token without verifying the signature; verification is the backend's
// job, the client only routes the token.
func decodeIDToken(tokenStr string) (*Identity, time.Time, error) {
	claims := &idTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode id token: %w", err)
	}

	uid := claims.Subject
	if uid == "" {
		return nil, time.Time{}, fmt.Errorf("id token has no subject")
	}

	kind := models.ProviderKind(claims.Firebase.SignInProvider)
	if kind == "" {
		kind = models.ProviderKindPassword
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return &Identity{
		UID:   uid,
		Email: claims.Email,
		Kind:  kind,
	}, expires, nil
}
