package subsonic

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"sync"
)

// saltLength is the number of characters in a generated salt. The
// protocol requires at least six; we use twelve for a wider nonce space.
const saltLength = 12

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// signPassword derives the authentication token for a password and salt.
//
// The token is the hex MD5 digest of password+salt, as mandated by the
// Subsonic protocol. MD5 here obfuscates the password on the wire rather
// than cryptographically protecting it; confidentiality relies on the
// transport (HTTPS). The function is pure: the same inputs always
// produce the same token.
func signPassword(password, salt string) string {
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// newSalt generates a cryptographically random alphanumeric salt.
func newSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("subsonic: failed to generate salt: %w", err)
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf), nil
}

// credentials authenticates outbound requests. It holds the username and
// password and tracks whether the session has fallen back to legacy
// password authentication (wire codes 41/42). A fresh salt and token are
// generated for every attempt so that a failed attempt never reuses its
// nonce. The password is never logged and never appears in errors.
type credentials struct {
	username string
	password string

	mu     sync.RWMutex
	legacy bool // true once the server rejected token auth
}

// apply adds authentication parameters to v: username plus either a
// fresh token/salt pair or, in legacy mode, the raw password.
func (c *credentials) apply(v url.Values) error {
	v.Set("u", c.username)

	c.mu.RLock()
	legacy := c.legacy
	c.mu.RUnlock()

	if legacy {
		v.Set("p", c.password)
		return nil
	}

	salt, err := newSalt()
	if err != nil {
		return err
	}
	v.Set("t", signPassword(c.password, salt))
	v.Set("s", salt)
	return nil
}

// fallback switches the session to legacy password authentication.
// Returns true if the mode changed, false if already in legacy mode.
func (c *credentials) fallback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.legacy {
		return false
	}
	c.legacy = true
	return true
}

// legacyMode reports whether the session transmits the raw password.
func (c *credentials) legacyMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.legacy
}
