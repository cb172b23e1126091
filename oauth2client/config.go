package oauth2client

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds each HTTP exchange when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Credentials identify the calling service to the authorization server.
type Credentials struct {
	// ClientID is the application's ID.
	ClientID string

	// ClientSecret is the application's secret.
	ClientSecret string
}

// Endpoints holds the two URLs a run talks to.
type Endpoints struct {
	// TokenURL is the URL of the token endpoint.
	TokenURL string

	// APIURL is the full URL of the protected resource.
	APIURL string
}

// Config holds everything a single fetch-and-call run needs.
type Config struct {
	Credentials
	Endpoints

	// Scope is the permission set requested for the token. Empty means no scope parameter.
	Scope string

	// Method is the HTTP method used for the resource call. Defaults to HttpPost.
	Method HttpMethod

	// Timeout bounds each HTTP exchange. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Validate reports the first missing or malformed field.
func (c Config) Validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("client id is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.TokenURL == "":
		return errors.New("token endpoint is required")
	case c.APIURL == "":
		return errors.New("api endpoint is required")
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.Method != "" {
		if _, err := ParseHttpMethod(string(c.Method)); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) method() HttpMethod {
	if c.Method == "" {
		return HttpPost
	}
	return c.Method
}

func (c Config) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Token is the result of a client-credentials exchange.
type Token struct {
	AccessToken string
	TokenType   string

	// Expiry is zero when the server did not send expires_in.
	Expiry time.Time
}

// Response is the raw result of the resource call.
type Response struct {
	Body       []byte
	StatusCode int
}
