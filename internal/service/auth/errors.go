package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the access token is malformed or its
	// signature does not match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrInvalidRefreshToken indicates the refresh token is malformed or
	// its signature does not match.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType indicates a token of one flavor was presented where
	// the other was expected (e.g. an access token sent to the refresh
	// endpoint).
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials indicates an email/password pair that did not
	// authenticate. Unknown email and wrong password both map here so the
	// two cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is the uniform failure for the refresh flow. Every
	// refresh failure collapses into it; the cause is never disclosed.
	ErrUnauthorized = errors.New("unauthorized")
)
