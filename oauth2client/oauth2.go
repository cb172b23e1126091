package oauth2client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ErrMissingAccessToken is wrapped by AuthenticationError when the token
// response parsed but carried no access_token.
var ErrMissingAccessToken = errors.New("token response has no access_token")

// tokenResponse represents the server's response to a token request.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// AcquireToken exchanges client credentials for a bearer token at tokenURL.
//
// The request is a form-encoded POST carrying grant_type=client_credentials,
// client_id, client_secret and scope in the body. The reply is decoded as
// JSON whatever its Content-Type. Every call performs a fresh exchange;
// nothing is cached. A nil httpClient means a default client.
//
// Any failure is returned as *AuthenticationError.
func AcquireToken(ctx context.Context, httpClient *http.Client, creds Credentials, scope, tokenURL string) (Token, error) {
	rc := resty.New()
	if httpClient != nil {
		rc = resty.NewWithClient(httpClient)
	}
	rc.SetLogger(restyLogger{zerolog.Nop()})
	return acquireToken(ctx, rc, creds, scope, tokenURL)
}

func acquireToken(ctx context.Context, rc *resty.Client, creds Credentials, scope, tokenURL string) (Token, error) {
	form := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
	}
	if scope != "" {
		form["scope"] = scope
	}

	resp, err := rc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormData(form).
		Post(tokenURL)
	if err != nil {
		return Token{}, &AuthenticationError{TokenURL: tokenURL, Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return Token{}, &AuthenticationError{
			TokenURL:   tokenURL,
			StatusCode: resp.StatusCode(),
			Body:       resp.Body(),
			Err:        fmt.Errorf("failed to get token: %s", resp.Status()),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return Token{}, &AuthenticationError{TokenURL: tokenURL, Err: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return Token{}, &AuthenticationError{TokenURL: tokenURL, Err: ErrMissingAccessToken}
	}

	tok := Token{AccessToken: tr.AccessToken, TokenType: tr.TokenType}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}
