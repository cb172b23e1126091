package oauth2client

import "fmt"

// AuthenticationError is returned when no access token could be obtained.
type AuthenticationError struct {
	TokenURL string

	// StatusCode and Body are set when the token endpoint answered with a non-2xx status.
	StatusCode int
	Body       []byte

	Err error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed at %s (status %d): %v", e.TokenURL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("authentication failed at %s: %v", e.TokenURL, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// NetworkError is returned when the resource request could not be completed.
// HTTP error statuses are not NetworkErrors.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
