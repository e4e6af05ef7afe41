package remote

import (
	"sync"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// Keys the credentials are stored under
const (
	TokenKey    = "placebo-casino-jwt-token"
	UserIDKey   = "placebo-casino-user-id"
	UsernameKey = "placebo-casino-username"
)

// TokenStore keeps the bearer token and the identity it belongs to
type TokenStore interface {
	Get(key string) string
	Set(key, value string)
	Clear()
}

// MemoryTokenStore is a TokenStore scoped to one process
type MemoryTokenStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

func (s *MemoryTokenStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *MemoryTokenStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range []string{TokenKey, UserIDKey, UsernameKey} {
		delete(s.values, key)
	}
}

// tokenClaims reads the claims of a JWT without verifying its signature.
// ok is false for tokens that are not JWTs; those are treated as opaque.
func tokenClaims(token string) (claims jwt.MapClaims, ok bool) {
	claims = jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// tokenExpired reports whether a JWT's exp claim is in the past
func tokenExpired(token string, now time.Time) bool {
	claims, ok := tokenClaims(token)
	if !ok {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

// tokenSubject returns the sub claim, if any
func tokenSubject(token string) string {
	claims, ok := tokenClaims(token)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
