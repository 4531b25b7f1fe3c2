package subsonic

import (
	"context"
	"sync"
)

// Capabilities describes what the probed server supports. They are used
// to enable optional fields opportunistically, never to branch control
// flow per named vendor: an unknown server is treated as
// baseline-conformant.
type Capabilities struct {
	ProtocolVersion string // Version reported in the ping envelope
	ServerType      string // Implementation tag, e.g. "navidrome" (informational)
	ServerVersion   string // Implementation version (informational)
	OpenSubsonic    bool   // Server advertises OpenSubsonic extensions
	TokenAuth       bool   // Server accepts signed-token authentication
	MaxPageSize     int    // Safe page size for paged endpoints
}

// defaultMaxPageSize is the conservative page size assumed for servers
// that do not advertise a limit.
const defaultMaxPageSize = 500

// capabilityState holds detected capabilities under a lock shared by the
// worker pool.
type capabilityState struct {
	mu       sync.RWMutex
	detected bool
	caps     Capabilities
}

func (s *capabilityState) set(caps Capabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A mid-session auth fallback must survive re-detection.
	if s.detected && !s.caps.TokenAuth {
		caps.TokenAuth = false
	}
	s.caps = caps
	s.detected = true
}

func (s *capabilityState) setLegacyAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps.TokenAuth = false
}

func (s *capabilityState) get() (Capabilities, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps, s.detected
}

// Ping issues a health-check call at health priority and records the
// server's capabilities. It is the session-start probe: the first call a
// caller should make, though the client works with baseline assumptions
// if it is skipped. Safe to call again to re-check server health.
func (c *Client) Ping(ctx context.Context) (Capabilities, error) {
	resp, err := c.call(ctx, PriorityHealth, "ping", nil)
	if err != nil {
		return Capabilities{}, err
	}

	caps := Capabilities{
		ProtocolVersion: resp.Version,
		ServerType:      resp.Type,
		ServerVersion:   resp.ServerVersion,
		OpenSubsonic:    resp.OpenSubsonic,
		TokenAuth:       !c.creds.legacyMode(),
		MaxPageSize:     defaultMaxPageSize,
	}
	c.caps.set(caps)

	caps, _ = c.caps.get()
	return caps, nil
}

// Capabilities returns the capabilities recorded by the last Ping. The
// second return is false if the server has not been probed yet.
func (c *Client) Capabilities() (Capabilities, bool) {
	return c.caps.get()
}
