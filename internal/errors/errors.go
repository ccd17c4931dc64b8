package errors

import "errors"

// Token endpoint error kinds. These three are the whole caller-visible contract
// of the grant flows; callers map them onto transport status codes.
var (
	// ErrInvalidParameter means the request itself is malformed (missing or unknown grant type).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotAuthorized covers every credential failure: unknown client, bad secret,
	// unresolvable refresh token or a declined token generation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotImplemented means the grant is a valid protocol grant this server does not service.
	ErrNotImplemented = errors.New("not implemented")
)

// Collaborator errors
var (
	// ErrNotFound is returned by directory and storage collaborators for absent entities.
	ErrNotFound = errors.New("not found")

	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrUserDisabled        = errors.New("user disabled")
)
