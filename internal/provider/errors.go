package provider

import "fmt"

type AuthErrorKind string

const (
	ErrKindInvalidCredential AuthErrorKind = "invalid_credential"
	ErrKindUserDisabled      AuthErrorKind = "user_disabled"
	ErrKindRateLimited       AuthErrorKind = "rate_limited"
	ErrKindNetwork           AuthErrorKind = "network"
	ErrKindUnknown           AuthErrorKind = "unknown"
)

// AuthError is a provider failure mapped to a stable kind and a localized
// message. Raw provider error codes never leave this package.
type AuthError struct {
	Kind AuthErrorKind
	code string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider auth failed: %s (%s)", e.Kind, e.code)
}

// Message returns the user-facing text for this failure.
func (e *AuthError) Message() string {
	switch e.Kind {
	case ErrKindInvalidCredential:
		return "Email hoặc mật khẩu không đúng."
	case ErrKindUserDisabled:
		return "Tài khoản của bạn đã bị vô hiệu hóa."
	case ErrKindRateLimited:
		return "Bạn đã thử quá nhiều lần. Vui lòng thử lại sau."
	default:
		return "Đăng nhập thất bại. Vui lòng thử lại."
	}
}

// Recoverable reports whether the user can simply retry (as opposed to the
// terminal resolution failures owned by the bridge).
func (e *AuthError) Recoverable() bool {
	return e.Kind != ErrKindUserDisabled
}

func mapProviderCode(code string) *AuthError {
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE":
		return &AuthError{Kind: ErrKindInvalidCredential, code: code}
	case "USER_DISABLED":
		return &AuthError{Kind: ErrKindUserDisabled, code: code}
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return &AuthError{Kind: ErrKindRateLimited, code: code}
	default:
		return &AuthError{Kind: ErrKindUnknown, code: code}
	}
}

func networkAuthError(err error) *AuthError {
	return &AuthError{Kind: ErrKindNetwork, code: err.Error()}
}
