package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// UserAgent identifies requests to both services. Float rejects
	// requests without one.
	UserAgent = "floaat (https://github.com/harrisonrobin/floaat)"

	requestTimeout = 30 * time.Second
)

// ErrMissingKey is returned when an API key is empty.
var ErrMissingKey = errors.New("missing API key")

// NewFloatClient returns an *http.Client that authenticates every request
// with the Float API key as a bearer token.
func NewFloatClient(ctx context.Context, apiKey string) (*http.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)
	client.Transport = &userAgentTransport{base: client.Transport}
	client.Timeout = requestTimeout
	return client, nil
}

// NewTogglClient returns an *http.Client that authenticates every request
// with the Toggl API token using basic auth.
func NewTogglClient(apiKey string) (*http.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	return &http.Client{
		Transport: &userAgentTransport{base: &basicAuthTransport{token: apiKey}},
		Timeout:   requestTimeout,
	}, nil
}

// basicAuthTransport sends "<token>:api_token" as basic auth.
type basicAuthTransport struct {
	token string
	base  http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.token, "api_token")
	return transport(t.base).RoundTrip(r)
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return transport(t.base).RoundTrip(r)
}

func transport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
