package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
)

// Factory builds a fresh Backend for one session
type Factory func() Backend

// Selector chooses the backend variant once per session
type Selector struct {
	mode          string
	remote        Factory
	local         Factory
	healthTimeout time.Duration
	log           *logging.Logger
}

// NewSelector creates a selector. mode is "auto", "remote" or "local";
// either factory may be nil when that variant is not configured.
func NewSelector(mode string, remote, local Factory) *Selector {
	return &Selector{
		mode:          mode,
		remote:        remote,
		local:         local,
		healthTimeout: 3 * time.Second,
		log:           logging.Default.With("backend"),
	}
}

// Select returns the backend for a new session. In auto mode the remote
// backend is used only when its health check answers.
func (s *Selector) Select(ctx context.Context) (Backend, error) {
	switch s.mode {
	case "remote":
		if s.remote == nil {
			return nil, fmt.Errorf("remote backend is not configured")
		}
		return s.remote(), nil
	case "local":
		if s.local == nil {
			return nil, fmt.Errorf("local backend is not configured")
		}
		return s.local(), nil
	case "auto", "":
		if s.remote != nil {
			b := s.remote()
			healthCtx, cancel := context.WithTimeout(ctx, s.healthTimeout)
			err := b.Health(healthCtx)
			cancel()
			if err == nil {
				return b, nil
			}
			s.log.Warn("Remote backend unavailable, using local storage: %v", err)
		}
		if s.local == nil {
			return nil, fmt.Errorf("no backend available")
		}
		return s.local(), nil
	default:
		return nil, fmt.Errorf("unknown backend mode %q", s.mode)
	}
}
