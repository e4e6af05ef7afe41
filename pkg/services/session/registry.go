package session

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/scheduler"
)

var ErrSessionNotFound = types.NewGameError(types.ErrNotLoggedIn, "session not found or expired")

// Registry keys live sessions by id for front ends that serve many players
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	manager     *Manager
	idleTimeout time.Duration
	scheduler   *scheduler.Scheduler
	now         func() time.Time
	log         *logging.Logger
}

// NewRegistry creates a registry. A zero idleTimeout disables reaping.
func NewRegistry(manager *Manager, idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		manager:     manager,
		idleTimeout: idleTimeout,
		now:         manager.now,
		log:         logging.Default.With("registry"),
	}
}

// Manager returns the manager sessions are created with
func (r *Registry) Manager() *Manager {
	return r.manager
}

// Login creates and registers a session
func (r *Registry) Login(ctx context.Context, creds backend.Credentials) (*Session, error) {
	return r.add(r.manager.Login(ctx, creds))
}

// Register creates an account and registers its session
func (r *Registry) Register(ctx context.Context, creds backend.Credentials) (*Session, error) {
	return r.add(r.manager.Register(ctx, creds))
}

// Restore reopens the last login and registers its session
func (r *Registry) Restore(ctx context.Context) (*Session, error) {
	return r.add(r.manager.Restore(ctx))
}

func (r *Registry) add(s *Session, err error) (*Session, error) {
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s, nil
}

// Get returns a live session and marks it active
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Logout removes and ends a session
func (r *Registry) Logout(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return r.manager.Logout(ctx, s)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap logs out sessions idle for longer than the timeout and returns how many
func (r *Registry) Reap(ctx context.Context) int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.log.Info("Logging out idle session %s", s.ID)
		_ = r.manager.Logout(ctx, s)
	}
	return len(idle)
}

// Start runs the idle reaper until ctx is cancelled or Stop is called
func (r *Registry) Start(ctx context.Context) {
	if r.idleTimeout <= 0 || r.scheduler != nil {
		return
	}
	interval := r.idleTimeout / 2
	if interval > time.Minute {
		interval = time.Minute
	}

	r.scheduler = scheduler.NewScheduler()
	r.scheduler.AddTask("session_reaper", interval, func(ctx context.Context) error {
		if n := r.Reap(ctx); n > 0 {
			r.log.Debug("Reaped %d idle sessions", n)
		}
		return nil
	})
	r.scheduler.Start(ctx)
}

// Stop halts the reaper and logs out every remaining session
func (r *Registry) Stop(ctx context.Context) {
	if r.scheduler != nil {
		r.scheduler.Stop()
		r.scheduler = nil
	}

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		_ = r.manager.Logout(ctx, s)
	}
}
