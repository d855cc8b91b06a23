package models

import "time"

type ProviderKind string

const (
	ProviderKindPassword ProviderKind = "password"
	ProviderKindGoogle   ProviderKind = "google.com"
	ProviderKindFacebook ProviderKind = "facebook.com"
)

// Federated reports whether accounts signed in through this provider kind
// may be auto-provisioned on first sign-in.
func (k ProviderKind) Federated() bool {
	return k != "" && k != ProviderKindPassword
}

type User struct {
	ID          int64      `json:"id"`
	ProviderUID string     `json:"firebaseUid"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"isAdmin"`
	IsLocked    bool       `json:"isLocked"`
	SchoolID    *int64     `json:"schoolId"`
	Points      int        `json:"points"`
	Level       int        `json:"level"`
	AvatarURL   string     `json:"avatarUrl"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}
