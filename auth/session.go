// Package auth is a simulated identity source: any non-empty email logs in.
package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront-cart/store"
)

// SessionKey holds the persisted login so a restart keeps the same bucket.
const SessionKey = "session_user"

var ErrEmailRequired = errors.New("email is required")

// Binder is notified whenever the current identity changes.
type Binder interface {
	Bind(identity string)
}

type persisted struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Email           string `json:"email,omitempty"`
}

type Session struct {
	store  store.Store
	binder Binder
	log    *zap.Logger

	mu    sync.Mutex
	email string
}

// NewSession restores the last persisted login, if any, and binds it.
func NewSession(s store.Store, b Binder, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	sess := &Session{store: s, binder: b, log: log}

	if raw, ok, err := s.Get(SessionKey); err != nil {
		log.Warn("read session", zap.Error(err))
	} else if ok {
		var p persisted
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			log.Warn("discarding malformed session", zap.Error(err))
		} else if p.IsAuthenticated && p.Email != "" {
			sess.email = p.Email
		}
	}
	b.Bind(sess.email)
	return sess
}

// Login accepts any non-empty email. The password is not checked.
func (s *Session) Login(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	s.save()
	s.binder.Bind(email)
	s.log.Info("login", zap.String("bucket", store.Bucket(email)))
	return nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = ""
	s.save()
	s.binder.Bind("")
	s.log.Info("logout")
}

// Current returns the logged-in email, or "" for the guest.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

func (s *Session) IsAuthenticated() bool { return s.Current() != "" }

func (s *Session) save() {
	data, _ := json.Marshal(persisted{IsAuthenticated: s.email != "", Email: s.email})
	if err := s.store.Set(SessionKey, string(data)); err != nil {
		s.log.Error("persist session", zap.Error(err))
	}
}
