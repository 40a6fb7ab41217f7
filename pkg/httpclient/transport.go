package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/giantswarm/spotauth/pkg/logging"
)

// TokenSource supplies access tokens. *auth.Provider implements it.
type TokenSource interface {
	// CurrentToken returns the held access token without blocking.
	CurrentToken() (string, bool)

	// Refresh obtains a new access token. Concurrent calls share one refresh.
	Refresh(ctx context.Context) (string, error)
}

// Transport is an http.RoundTripper that adds a Bearer token to each
// request. When the server answers 401 it refreshes the token once and
// retries the request once.
//
// Request bodies are replayed on retry through req.GetBody, or by
// buffering the body when GetBody is not set.
type Transport struct {
	// Base is the underlying transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Source provides the access tokens.
	Source TokenSource
}

// NewTransport creates a Transport over base.
func NewTransport(source TokenSource, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Source: source}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source == nil {
		closeBody(req)
		return nil, errNoTokenSource
	}

	token, ok := t.Source.CurrentToken()
	if !ok {
		closeBody(req)
		return nil, t.authError(req, AuthNoToken, nil, nil)
	}

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.send(req, token, getBody)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	challenge := challengeFromResponse(resp)
	discard(resp)

	// another request may have refreshed already; do not refresh twice
	next, ok := t.Source.CurrentToken()
	if !ok || next == token {
		logging.Debug("HTTPClient", "401 from %s %s, refreshing token", req.Method, redactURL(req))
		next, err = t.Source.Refresh(req.Context())
		if err != nil {
			return nil, t.authError(req, AuthRefreshFailed, challenge, err)
		}
	} else {
		logging.Debug("HTTPClient", "401 from %s %s, retrying with token refreshed meanwhile", req.Method, redactURL(req))
	}

	resp, err = t.send(req, next, getBody)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		challenge = challengeFromResponse(resp)
		discard(resp)
		logging.Warn("HTTPClient", "Request %s %s still unauthorized after refresh", req.Method, redactURL(req))
		return nil, t.authError(req, AuthStillUnauthorized, challenge, nil)
	}
	return resp, nil
}

func (t *Transport) send(req *http.Request, token string, getBody func() (io.ReadCloser, error)) (*http.Response, error) {
	out := req.Clone(req.Context())
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, fmt.Errorf("httpclient: rewind request body: %w", err)
		}
		out.Body = body
		out.GetBody = getBody
	}
	out.Header.Set("Authorization", "Bearer "+token)
	return t.base().RoundTrip(out)
}

func (t *Transport) authError(req *http.Request, kind AuthErrorKind, challenge *Challenge, err error) *AuthError {
	return &AuthError{
		Kind:      kind,
		Method:    req.Method,
		URL:       redactURL(req),
		Challenge: challenge,
		Err:       err,
	}
}

// replayableBody returns a function yielding a fresh copy of the request
// body, or nil when the request has none.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("httpclient: buffer request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyReadBytes))
	_ = resp.Body.Close()
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

// redactURL drops the query, which may carry identifiers.
func redactURL(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	u := *req.URL
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
