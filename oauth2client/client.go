package oauth2client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// APIClient runs the client-credentials exchange followed by one
// authenticated call to the configured resource.
type APIClient struct {
	config Config
	rest   *resty.Client
	logger zerolog.Logger
}

// Option customizes an APIClient.
type Option func(*APIClient)

// WithLogger sets the logger used for request tracing. Secrets and tokens are never logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithHTTPClient makes both the token exchange and the resource call go
// through hc. A non-zero hc.Timeout is kept; otherwise the configured
// timeout is set on hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) {
		c.rest = resty.NewWithClient(hc)
	}
}

// NewAPIClient creates a new APIClient after validating config.
//
// Example:
//
//	client, err := oauth2client.NewAPIClient(oauth2client.Config{
//		Credentials: oauth2client.Credentials{
//			ClientID:     "your_client_id",
//			ClientSecret: "your_client_secret",
//		},
//		Endpoints: oauth2client.Endpoints{
//			TokenURL: "https://auth.example.com/oauth2/token",
//			APIURL:   "https://api.example.com/food",
//		},
//		Scope: "identity/Food",
//	})
func NewAPIClient(config Config, opts ...Option) (*APIClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &APIClient{
		config: config,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rest == nil {
		c.rest = resty.New()
	}
	if c.rest.GetClient().Timeout == 0 {
		c.rest.SetTimeout(config.timeout())
	}
	c.rest.SetLogger(restyLogger{c.logger})

	return c, nil
}

// AcquireToken performs a fresh client-credentials exchange with the configured credentials and scope.
func (c *APIClient) AcquireToken(ctx context.Context) (Token, error) {
	c.logger.Debug().
		Str("token_url", c.config.TokenURL).
		Str("scope", c.config.Scope).
		Msg("requesting access token")

	tok, err := acquireToken(ctx, c.rest, c.config.Credentials, c.config.Scope, c.config.TokenURL)
	if err != nil {
		return Token{}, err
	}

	c.logger.Debug().
		Str("token_type", tok.TokenType).
		Time("expiry", tok.Expiry).
		Msg("access token acquired")
	return tok, nil
}

// CallAPI sends one request to the configured API URL with accessToken as a
// bearer credential and no body.
//
// The response body is returned verbatim whatever the status code. Only a
// failure to send the request or read the response is an error, reported as
// *NetworkError.
func (c *APIClient) CallAPI(ctx context.Context, accessToken string) (Response, error) {
	method := c.config.method()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", ContentTypeJSON).
		Execute(string(method), c.config.APIURL)
	if err != nil {
		return Response{}, &NetworkError{URL: c.config.APIURL, Err: err}
	}

	c.logger.Debug().
		Str("method", string(method)).
		Str("api_url", c.config.APIURL).
		Int("status", resp.StatusCode()).
		Int("bytes", len(resp.Body())).
		Dur("elapsed", resp.Time()).
		Msg("api call completed")

	return Response{Body: resp.Body(), StatusCode: resp.StatusCode()}, nil
}

// Run acquires a token and then uses it for a single resource call.
func (c *APIClient) Run(ctx context.Context) (Response, error) {
	tok, err := c.AcquireToken(ctx)
	if err != nil {
		return Response{}, err
	}
	return c.CallAPI(ctx, tok.AccessToken)
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct {
	zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.Debug().Msgf(format, v...)
}
