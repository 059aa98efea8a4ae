package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// authenticator gates the API behind a single access password and hands out
// opaque bearer tokens. An empty password disables the gate entirely.
type authenticator struct {
	password string
	tokenTTL time.Duration

	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewAuthenticator(password string, tokenTTL time.Duration) *authenticator {
	return &authenticator{
		password: password,
		tokenTTL: tokenTTL,
		tokens:   make(map[string]time.Time),
	}
}

func (a *authenticator) Enabled() bool { return a.password != "" }

// Login checks the password and issues a session token.
func (a *authenticator) Login(password string) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("authentication is disabled")
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", fmt.Errorf("invalid password")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	token := hex.EncodeToString(buf)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.tokens[token] = time.Now().Add(a.tokenTTL)
	return token, nil
}

// IsAuthorized reports whether the token belongs to a live session. Always
// true when the gate is disabled.
func (a *authenticator) IsAuthorized(token string) bool {
	if !a.Enabled() {
		return true
	}

	a.mu.RLock()
	expiry, ok := a.tokens[token]
	a.mu.RUnlock()

	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		a.mu.Lock()
		delete(a.tokens, token)
		a.mu.Unlock()
		return false
	}
	return true
}
