// Package callback runs the short-lived loopback server that receives the
// authorization redirect of the code flows.
package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/oauth"
)

// DefaultPort is the port used when the redirect URI does not name one.
const DefaultPort = 8888

// DefaultPath is the callback path used when the redirect URI has none.
const DefaultPath = "/callback"

// Timeout is how long login waits for the browser to come back.
const Timeout = 10 * time.Minute

var (
	successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Signed in</title>
<style>body{font-family:sans-serif;margin:4em;color:#191414}</style></head>
<body><h1>Signed in</h1><p>You can close this window and return to the terminal.</p></body></html>
`))

	errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Sign-in failed</title>
<style>body{font-family:sans-serif;margin:4em;color:#191414}</style></head>
<body><h1>Sign-in failed</h1><p>{{.Reason}}</p><p>Return to the terminal and try again.</p></body></html>
`))
)

// Server receives exactly one authorization redirect. Requests whose state
// does not match are answered with 400 and the server keeps waiting; the
// first request with the expected state is the one that counts.
type Server struct {
	addr          string
	path          string
	expectedState string

	server   *http.Server
	listener net.Listener
	resultCh chan *oauth.CallbackResult
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
	redirect string
}

// NewServer creates a server for redirectURI, which must be a loopback
// http URL such as http://127.0.0.1:8888/callback.
func NewServer(redirectURI, expectedState string) (*Server, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect URI %q must use http for a loopback callback", redirectURI)
	}

	host := u.Hostname()
	switch host {
	case "localhost", "127.0.0.1", "::1":
	default:
		return nil, fmt.Errorf("redirect URI host %q is not a loopback address", host)
	}
	if host == "localhost" {
		host = "127.0.0.1"
	}

	port := u.Port()
	if port == "" {
		port = fmt.Sprint(DefaultPort)
	}
	path := u.Path
	if path == "" {
		path = DefaultPath
	}

	return &Server{
		addr:          net.JoinHostPort(host, port),
		path:          path,
		expectedState: expectedState,
		resultCh:      make(chan *oauth.CallbackResult, 1),
		errorCh:       make(chan error, 1),
		redirect:      redirectURI,
	}, nil
}

// Start begins listening. The server stops when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("Callback", "Listening for authorization redirect on %s%s", listener.Addr(), s.path)
	return nil
}

// Wait blocks until the redirect arrives or ctx is done. A redirect with
// the expected state that carries a denial or no code yields a
// *oauth.CallbackError.
func (s *Server) Wait(ctx context.Context) (*oauth.CallbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RedirectURI returns the redirect URI the server was created for.
func (s *Server) RedirectURI() string {
	return s.redirect
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	// a redirect that does not carry our state is not the one we wait for;
	// it must not use up the single callback
	query := r.URL.Query()
	if err := oauth.VerifyState(s.expectedState, query.Get("state")); err != nil {
		logging.Warn("Callback", "Ignored redirect with unexpected state from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_ = errorPage.Execute(w, map[string]string{"Reason": reason(err)})
		return
	}

	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, query)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func (s *Server) processCallback(w http.ResponseWriter, query url.Values) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	result, err := oauth.ParseCodeCallback(query, s.expectedState)
	if err != nil {
		logging.Warn("Callback", "Rejected authorization redirect: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		_ = errorPage.Execute(w, map[string]string{"Reason": reason(err)})
		select {
		case s.errorCh <- err:
		default:
		}
	} else {
		_ = successPage.Execute(w, nil)
		select {
		case s.resultCh <- result:
		default:
		}
	}

	// let the response reach the browser before shutting down
	go func() {
		time.Sleep(time.Second)
		s.Stop()
	}()
}

func reason(err error) string {
	var cbErr *oauth.CallbackError
	if !errors.As(err, &cbErr) {
		return "The redirect could not be processed."
	}
	switch cbErr.Kind {
	case oauth.CallbackServerDenied:
		if cbErr.Description != "" {
			return "Access was denied: " + cbErr.Description
		}
		return "Access was denied."
	case oauth.CallbackStateMismatch:
		return "The request could not be verified."
	default:
		return "The redirect was incomplete."
	}
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}
