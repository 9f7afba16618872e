package config

import (
	"fmt"

	"github.com/calmora/calmora-cli/internal/session"
)

// OpenSessionStore builds the session store selected by Session.Backend.
// The returned close func releases backend connections and is never nil.
func (c *Config) OpenSessionStore() (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Session.Backend {
	case BackendFile, "":
		s, err := session.NewFileStore(c.Session.Path)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case BackendRedis:
		s, err := session.NewRedisStoreFromURL(c.Session.RedisURL, c.Session.RedisKey, c.Session.TTL)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return session.NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
}
