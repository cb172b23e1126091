// Package oauth2client obtains a bearer token with the OAuth2 client-credentials
// grant and uses it for a single authenticated API call.
//
// Each run is two blocking steps. AcquireToken posts the client id, secret and
// scope to the token endpoint and extracts access_token from the JSON reply.
// CallAPI then sends one request to the resource with an
// "Authorization: Bearer" header and returns the raw body untouched, whatever
// the status code. Tokens are never cached or refreshed: every run performs
// its own exchange.
//
// Usage:
//
//	client, err := oauth2client.NewAPIClient(oauth2client.Config{
//		Credentials: oauth2client.Credentials{ClientID: "your_client_id", ClientSecret: "your_client_secret"},
//		Endpoints:   oauth2client.Endpoints{TokenURL: "https://auth.example.com/oauth2/token", APIURL: "https://api.example.com/food"},
//		Scope:       "identity/Food",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := client.Run(context.Background())
//
// Failures are typed: *AuthenticationError when no token could be obtained,
// *NetworkError when the resource request could not be sent.
package oauth2client
