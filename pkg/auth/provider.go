package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// refreshKey is the single singleflight key; a Provider holds one credential.
const refreshKey = "refresh"

// ErrNoAccessToken is returned when an access token is required but none is held.
var ErrNoAccessToken = errors.New("no access token available")

// RefreshFunc obtains a new token. It receives a copy of the state at the
// time the refresh started.
type RefreshFunc func(ctx context.Context, current TokenState) (*oauth.TokenResponse, error)

// Provider owns a TokenState and coordinates refreshes of it.
//
// CurrentToken never blocks. Refresh is single-flight: callers that arrive
// while a refresh is in flight wait for it and all receive the same result.
// A caller whose context ends stops waiting, but the refresh itself keeps
// running for the others.
//
// A failed refresh moves the holder to StatusFailed and keeps the previous
// access token, so requests that can still succeed with it are not cut off.
type Provider struct {
	id       string
	flow     string
	refresh  RefreshFunc
	noRT     bool
	minValid time.Duration

	initial   *oauth.TokenResponse
	onSuccess func(*oauth.TokenResponse)
	onFailure func(error)

	// mu serializes writes to state, lastErr and generation. Reads of
	// state go through the atomic pointer; lastErr and generation are
	// read under mu.
	mu         sync.Mutex
	state      atomic.Pointer[TokenState]
	lastErr    error
	generation uint64

	group singleflight.Group
}

// Option configures a Provider.
type Option func(*Provider)

// WithInitialToken seeds the holder, typically with the result of the
// initial exchange or a token loaded from storage.
func WithInitialToken(tok *oauth.TokenResponse) Option {
	return func(p *Provider) {
		p.initial = tok
	}
}

// WithOnRefreshSuccess registers a callback invoked after each successful
// refresh with the effective token, including a retained refresh token.
// It runs before waiting callers are released and must not call Refresh.
func WithOnRefreshSuccess(fn func(*oauth.TokenResponse)) Option {
	return func(p *Provider) {
		p.onSuccess = fn
	}
}

// WithOnRefreshFailure registers a callback invoked after each failed
// refresh. It runs before waiting callers are released and must not call Refresh.
func WithOnRefreshFailure(fn func(error)) Option {
	return func(p *Provider) {
		p.onFailure = fn
	}
}

// WithoutRefreshTokens makes the holder drop any refresh token it is given.
// Used for grants that must never hold one.
func WithoutRefreshTokens() Option {
	return func(p *Provider) {
		p.noRT = true
	}
}

// WithRefreshThreshold sets how close to expiry Token refreshes proactively.
func WithRefreshThreshold(d time.Duration) Option {
	return func(p *Provider) {
		p.minValid = d
	}
}

// WithFlowName labels audit events from this holder.
func WithFlowName(name string) Option {
	return func(p *Provider) {
		p.flow = name
	}
}

// NewProvider creates a holder whose refreshes are performed by refresh.
func NewProvider(refresh RefreshFunc, opts ...Option) (*Provider, error) {
	if refresh == nil {
		return nil, errors.New("refresh function is required")
	}

	p := &Provider{
		id:       uuid.NewString(),
		refresh:  refresh,
		minValid: oauth.TokenRefreshThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}

	st := TokenState{Status: StatusUnauthenticated}
	if p.initial != nil && p.initial.AccessToken != "" {
		st = p.apply(st, p.initial)
	}
	p.initial = nil
	p.state.Store(&st)

	logging.Debug("Auth", "Created token holder %s (flow=%s, status=%s)", p.id, p.flow, st.Status)
	return p, nil
}

// NewFlowProvider creates a holder that refreshes through flow.Refresh with
// the held refresh token.
func NewFlowProvider(flow oauth.Flow, opts ...Option) (*Provider, error) {
	if flow == nil {
		return nil, errors.New("flow is required")
	}
	base := []Option{WithFlowName(flow.Kind().String())}
	if !flow.Kind().IssuesRefreshTokens() {
		base = append(base, WithoutRefreshTokens())
	}
	return NewProvider(func(ctx context.Context, current TokenState) (*oauth.TokenResponse, error) {
		return flow.Refresh(ctx, current.RefreshToken)
	}, append(base, opts...)...)
}

// NewClientCredentialsProvider creates a holder that renews by running the
// client credentials exchange again.
func NewClientCredentialsProvider(flow *oauth.ClientCredentialsFlow, opts ...Option) (*Provider, error) {
	if flow == nil {
		return nil, errors.New("flow is required")
	}
	base := []Option{WithFlowName(flow.Kind().String()), WithoutRefreshTokens()}
	return NewProvider(func(ctx context.Context, _ TokenState) (*oauth.TokenResponse, error) {
		return flow.Exchange(ctx)
	}, append(base, opts...)...)
}

// ID identifies this holder in logs and audit events.
func (p *Provider) ID() string {
	return p.id
}

// CurrentToken returns the held access token without blocking.
func (p *Provider) CurrentToken() (string, bool) {
	st := p.state.Load()
	return st.AccessToken, st.AccessToken != ""
}

// State returns a copy of the held state.
func (p *Provider) State() TokenState {
	return *p.state.Load()
}

// Status returns the current lifecycle status.
func (p *Provider) Status() Status {
	return p.state.Load().Status
}

// LastError returns the error of the most recent failed refresh, or nil
// once a refresh has succeeded.
func (p *Provider) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Summary describes the held state without token values.
func (p *Provider) Summary() Summary {
	s := p.State().Summarize()
	if err := p.LastError(); err != nil {
		s.LastError = err.Error()
	}
	return s
}

// Expired reports whether the held token expires within margin.
// A holder without an access token is always expired.
func (p *Provider) Expired(margin time.Duration) bool {
	st := p.state.Load()
	if st.AccessToken == "" {
		return true
	}
	if st.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(st.ExpiresAt)
}

// SetToken installs the result of an initial exchange and moves the holder
// to StatusAuthenticated. An in-flight refresh started before this call
// does not overwrite the new token.
func (p *Provider) SetToken(tok *oauth.TokenResponse) error {
	if tok == nil || tok.AccessToken == "" {
		return ErrNoAccessToken
	}

	p.mu.Lock()
	st := p.apply(TokenState{}, tok)
	p.state.Store(&st)
	p.lastErr = nil
	p.generation++
	p.mu.Unlock()

	logging.Debug("Auth", "Token installed on holder %s (expires_at=%s)", p.id, formatExpiry(st.ExpiresAt))
	return nil
}

// Clear drops all credential material and returns to StatusUnauthenticated.
func (p *Provider) Clear() {
	p.mu.Lock()
	p.state.Store(&TokenState{Status: StatusUnauthenticated})
	p.lastErr = nil
	p.generation++
	p.mu.Unlock()

	logging.Debug("Auth", "Cleared token holder %s", p.id)
}

// Refresh obtains a new access token. Concurrent callers share one
// in-flight refresh. If ctx ends first, Refresh returns ctx.Err() while the
// refresh continues in the background and still updates the holder.
// If SetToken or Clear runs while the refresh is in flight, its result is
// dropped and callers get the token installed since, or ErrNoAccessToken.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	ch := p.group.DoChan(refreshKey, func() (interface{}, error) {
		return p.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Token returns the held access token, refreshing first when it is missing
// or within the refresh threshold of expiry. If that refresh fails but the
// held token has not expired yet, the held token is returned.
func (p *Provider) Token(ctx context.Context) (string, error) {
	st := p.State()
	if st.AccessToken != "" && (st.ExpiresAt.IsZero() || time.Until(st.ExpiresAt) > p.minValid) {
		return st.AccessToken, nil
	}

	tok, err := p.Refresh(ctx)
	if err == nil {
		return tok, nil
	}

	if cur, ok := p.CurrentToken(); ok && !p.Expired(oauth.DefaultExpiryMargin) {
		logging.Warn("Auth", "Proactive refresh failed on holder %s, serving current token: %v", p.id, err)
		return cur, nil
	}
	return "", err
}

func (p *Provider) doRefresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	prev := *p.state.Load()
	gen := p.generation
	next := prev
	next.Status = StatusRefreshing
	p.state.Store(&next)
	p.mu.Unlock()

	logging.Debug("Auth", "Refreshing token on holder %s (from=%s, has_refresh_token=%t)", p.id, prev.Status, prev.RefreshToken != "")

	resp, err := p.refresh(ctx, prev)
	if err == nil && (resp == nil || resp.AccessToken == "") {
		err = &oauth.GrantError{Kind: oauth.GrantServerError, Op: "refresh", Description: "refresh returned no access token"}
	}

	var st TokenState

	p.mu.Lock()
	superseded := gen != p.generation
	switch {
	case superseded:
		// SetToken or Clear ran meanwhile; their state wins
		st = *p.state.Load()
	case err != nil:
		st = *p.state.Load()
		st.Status = StatusFailed
		p.lastErr = err
		p.state.Store(&st)
	default:
		st = p.apply(*p.state.Load(), resp)
		p.lastErr = nil
		p.state.Store(&st)
	}
	p.mu.Unlock()

	if superseded {
		// callers get what the holder holds now, never the discarded result
		logging.Debug("Auth", "Refresh result on holder %s superseded (refresh_err=%v)", p.id, err != nil)
		if st.AccessToken == "" {
			return "", ErrNoAccessToken
		}
		return st.AccessToken, nil
	}

	if err != nil {
		logging.Warn("Auth", "Token refresh failed on holder %s: %v", p.id, err)
		p.audit("failure", err)
		if p.onFailure != nil {
			p.onFailure(err)
		}
		return "", err
	}

	logging.Debug("Auth", "Token refreshed on holder %s (expires_at=%s)", p.id, formatExpiry(st.ExpiresAt))
	p.audit("success", nil)
	if p.onSuccess != nil {
		p.onSuccess(&oauth.TokenResponse{
			AccessToken:  st.AccessToken,
			TokenType:    st.TokenType,
			RefreshToken: st.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
			ExpiresAt:    st.ExpiresAt,
			Scope:        st.Scope,
		})
	}
	return resp.AccessToken, nil
}

// apply merges a token response into st.
// A refresh token is only replaced when the response carries a new one.
func (p *Provider) apply(st TokenState, tok *oauth.TokenResponse) TokenState {
	st.AccessToken = tok.AccessToken
	st.TokenType = tok.TokenType
	if st.TokenType == "" {
		st.TokenType = oauth.TokenTypeBearer
	}
	if tok.Scope != "" {
		st.Scope = tok.Scope
	}

	st.ExpiresAt = tok.ExpiresAt
	if st.ExpiresAt.IsZero() && tok.ExpiresIn > 0 {
		st.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	switch {
	case p.noRT:
		st.RefreshToken = ""
	case tok.RefreshToken != "":
		st.RefreshToken = tok.RefreshToken
	}

	st.Status = StatusAuthenticated
	return st
}

func (p *Provider) audit(outcome string, err error) {
	ev := logging.AuditEvent{
		Action:   "token_refresh",
		Outcome:  outcome,
		Flow:     p.flow,
		HolderID: p.id,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	logging.Audit(ev)
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
