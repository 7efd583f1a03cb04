// Package session owns the session token: its persistence, its attachment to
// outbound requests, and its invalidation when the server rejects it.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"sprintsync/internal/service"
)

// Manager holds the current token and the identity fetched for it.
// It is safe for concurrent use.
type Manager struct {
	store Store
	log   *zap.Logger

	mu       sync.RWMutex
	tok      *oauth2.Token
	identity *service.User

	lmu       sync.Mutex
	listeners map[int]func()
	nextID    int
}

// NewManager creates a Manager backed by store. The in-memory state starts
// empty; call LoadPersisted to pick up a token from a previous run.
func NewManager(store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:     store,
		log:       log,
		listeners: make(map[int]func()),
	}
}

func bearer(token string) *oauth2.Token {
	return &oauth2.Token{AccessToken: token, TokenType: "bearer"}
}

// LoadPersisted reads the token stored by a previous run. The token is not
// validated; the first request made with it will tell.
func (m *Manager) LoadPersisted() (string, bool, error) {
	tok, err := m.store.Load()
	if err != nil {
		return "", false, err
	}

	m.mu.Lock()
	m.tok = tok
	m.identity = nil
	m.mu.Unlock()

	if tok == nil {
		return "", false, nil
	}
	m.log.Debug("loaded persisted session")
	return tok.AccessToken, true, nil
}

// Token returns the current token.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tok == nil {
		return "", false
	}
	return m.tok.AccessToken, true
}

// HasToken reports whether a token is present.
func (m *Manager) HasToken() bool {
	_, ok := m.Token()
	return ok
}

// SetToken stores token in memory and in the store. An empty token clears
// both. Requests never observe a half-updated token.
func (m *Manager) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(token)
}

// Clear is SetToken("").
func (m *Manager) Clear() error {
	return m.SetToken("")
}

func (m *Manager) setLocked(token string) error {
	m.identity = nil
	if token == "" {
		m.tok = nil
		return m.store.Clear()
	}

	tok := bearer(token)
	if err := m.store.Save(tok); err != nil {
		return err
	}
	m.tok = tok
	return nil
}

// AttachAuth adds the bearer credential to req when a token is present and
// leaves req untouched otherwise.
func (m *Manager) AttachAuth(req *http.Request) {
	m.mu.RLock()
	tok := m.tok
	m.mu.RUnlock()

	if tok != nil {
		tok.SetAuthHeader(req)
	}
}

// OnUnauthorized is called for every 401 response. It clears the session
// and signals listeners. Only the call that actually clears a token has any
// effect, so concurrent 401s produce a single clear and a single signal.
func (m *Manager) OnUnauthorized() {
	m.mu.Lock()
	if m.tok == nil {
		m.mu.Unlock()
		return
	}
	err := m.setLocked("")
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("failed to clear stored token", zap.Error(err))
	}
	m.log.Debug("session invalidated by server")
	m.notify()
}

// OnInvalidate registers fn to run when the server invalidates the session.
// The returned function unregisters it.
func (m *Manager) OnInvalidate(fn func()) (unregister func()) {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.lmu.Lock()
		defer m.lmu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) notify() {
	m.lmu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SetIdentity records the user the current token belongs to.
// Ignored when no token is present.
func (m *Manager) SetIdentity(u service.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return
	}
	m.identity = &u
}

// Identity returns the user fetched for the current token, if any.
func (m *Manager) Identity() (service.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tok == nil || m.identity == nil {
		return service.User{}, false
	}
	return *m.identity, true
}

// Claims is the unverified payload of the session token.
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Expiry returns the token expiry, or the zero time if the token has none.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Claims decodes the token payload without checking its signature. The
// result is informational only; the server remains the authority.
func (m *Manager) Claims() (Claims, bool) {
	token, ok := m.Token()
	if !ok {
		return Claims{}, false
	}

	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Claims{}, false
	}
	return c, true
}
