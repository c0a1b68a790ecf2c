package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API errors
	ErrNotFound          = fmt.Errorf("resource not found")
	ErrForbidden         = fmt.Errorf("forbidden")
	ErrRateLimited       = fmt.Errorf("rate limited")
	ErrRateLimitExceeded = fmt.Errorf("rate limit exceeded")
	ErrTransient         = fmt.Errorf("transient request failure")

	// Input validation errors
	ErrInvalidID     = fmt.Errorf("invalid Spotify ID")
	ErrInvalidMarket = fmt.Errorf("invalid market code")
	ErrInputTooLong  = fmt.Errorf("input exceeds maximum length")
	ErrTooManyItems  = fmt.Errorf("too many items")
)
