// Package tokenstore persists the credential of each client between CLI runs.
//
// SECURITY: files are written with 0600 permissions inside a 0700
// directory, and token values are never logged.
package tokenstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/giantswarm/spotauth/pkg/logging"
	"github.com/giantswarm/spotauth/pkg/oauth"
)

// DefaultDir is the token directory relative to the user's home.
const DefaultDir = ".config/spotauth/tokens"

// ErrNotFound is returned when no token is stored for a client.
var ErrNotFound = errors.New("no stored token")

// StoredToken is the on-disk form of a client's credential.
type StoredToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`

	// ClientID and Flow identify what the token was issued to.
	ClientID string `json:"client_id"`
	Flow     string `json:"flow"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToTokenResponse converts the stored token for seeding an auth.Provider.
func (t *StoredToken) ToTokenResponse() *oauth.TokenResponse {
	return &oauth.TokenResponse{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		Scope:        t.Scope,
	}
}

// Expired reports whether the access token expires within margin.
func (t *StoredToken) Expired(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(t.ExpiresAt)
}

// Config configures a Store.
type Config struct {
	// Dir is the directory for token files. Defaults to ~/.config/spotauth/tokens.
	Dir string

	// FileMode enables persistence. If false, tokens live in memory only.
	FileMode bool
}

// Store keeps one token per client ID.
type Store struct {
	mu       sync.RWMutex
	dir      string
	fileMode bool
	tokens   map[string]*StoredToken
}

// New creates a Store, creating its directory when file mode is enabled.
func New(cfg Config) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDir)
	}

	if cfg.FileMode {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create token storage directory: %w", err)
		}
	}

	return &Store{
		dir:      dir,
		fileMode: cfg.FileMode,
		tokens:   make(map[string]*StoredToken),
	}, nil
}

// Save stores tok for clientID. An existing record keeps its CreatedAt.
func (s *Store) Save(clientID, flow string, tok *oauth.TokenResponse) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.New("refusing to store an empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenKey(clientID)
	now := time.Now()
	expiresAt := tok.ExpiresAt
	if expiresAt.IsZero() && tok.ExpiresIn > 0 {
		expiresAt = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	}

	stored := &StoredToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        tok.Scope,
		ExpiresAt:    expiresAt,
		ClientID:     clientID,
		Flow:         flow,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prev, err := s.loadLocked(key); err == nil && prev.Flow == flow {
		stored.CreatedAt = prev.CreatedAt
	}

	if s.fileMode {
		if err := s.writeFile(key, stored); err != nil {
			logging.Audit(logging.AuditEvent{Action: "token_stored", Outcome: "failure", Flow: flow, Target: clientID, Error: err.Error()})
			return fmt.Errorf("failed to persist token: %w", err)
		}
	}
	s.tokens[key] = stored

	logging.Audit(logging.AuditEvent{Action: "token_stored", Outcome: "success", Flow: flow, Target: clientID})
	logging.Debug("TokenStore", "Stored token for client %s (expires_at=%s, has_refresh_token=%t)",
		clientID, expiresAt.Format(time.RFC3339), stored.RefreshToken != "")
	return nil
}

// Load returns a copy of the token stored for clientID, expired or not; the caller
// decides whether a refresh can revive it. It returns ErrNotFound when
// nothing is stored.
func (s *Store) Load(clientID string) (*StoredToken, error) {
	key := tokenKey(clientID)

	s.mu.RLock()
	if tok, ok := s.tokens[key]; ok {
		s.mu.RUnlock()
		return tok.clone(), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	tok, err := s.loadLocked(key)
	if err != nil {
		return nil, err
	}
	return tok.clone(), nil
}

// clone returns a copy so callers cannot change the cached record.
func (t *StoredToken) clone() *StoredToken {
	c := *t
	return &c
}

func (s *Store) loadLocked(key string) (*StoredToken, error) {
	if tok, ok := s.tokens[key]; ok {
		return tok, nil
	}
	if !s.fileMode {
		return nil, ErrNotFound
	}

	tok, err := s.readFile(key)
	if err != nil {
		return nil, err
	}
	s.tokens[key] = tok
	return tok, nil
}

// Delete removes the token stored for clientID. Deleting a missing token
// is not an error.
func (s *Store) Delete(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenKey(clientID)
	delete(s.tokens, key)

	if s.fileMode {
		err := os.Remove(s.path(key))
		if err != nil && !os.IsNotExist(err) {
			logging.Audit(logging.AuditEvent{Action: "token_deleted", Outcome: "failure", Target: clientID, Error: err.Error()})
			return fmt.Errorf("failed to delete token file: %w", err)
		}
	}

	logging.Audit(logging.AuditEvent{Action: "token_deleted", Outcome: "success", Target: clientID})
	return nil
}

// Path returns the file that holds the token for clientID.
func (s *Store) Path(clientID string) string {
	return s.path(tokenKey(clientID))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// tokenKey derives a filesystem-safe name from a client ID.
func tokenKey(clientID string) string {
	hash := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(hash[:16])
}

// writeFile replaces the token file atomically.
func (s *Store) writeFile(key string, tok *StoredToken) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *Store) readFile(key string) (*StoredToken, error) {
	// #nosec G304 -- the path is derived from a hash, not user input
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok StoredToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &tok, nil
}
