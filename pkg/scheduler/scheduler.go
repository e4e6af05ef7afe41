package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
)

// Task represents a scheduled task
type Task struct {
	Name       string
	Interval   time.Duration
	Fn         func(context.Context) error
	RunOnStart bool
}

// Scheduler runs housekeeping tasks such as the idle session reaper
type Scheduler struct {
	tasks   []*Task
	running bool
	mutex   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *logging.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make([]*Task, 0),
		log:   logging.Default.With("scheduler"),
	}
}

// AddTask adds a task that first runs one interval after Start
func (s *Scheduler) AddTask(name string, interval time.Duration, fn func(context.Context) error) {
	s.Add(&Task{Name: name, Interval: interval, Fn: fn})
}

// Add adds a task. Tasks added while running start on the next Start.
func (s *Scheduler) Add(task *Task) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tasks = append(s.tasks, task)
}

// Start runs every task on its own ticker until ctx is cancelled or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, task := range s.tasks {
		if task.Interval <= 0 {
			s.log.Warn("Task %s has no interval, not scheduled", task.Name)
			continue
		}
		s.wg.Add(1)
		go s.runTask(ctx, task)
	}

	s.log.Info("Scheduler started with %d tasks", len(s.tasks))
}

// Stop cancels all tasks and waits for running ones to return
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mutex.Unlock()

	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runTask(ctx context.Context, task *Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	if task.RunOnStart {
		s.run(ctx, task)
	}

	for {
		select {
		case <-ticker.C:
			s.run(ctx, task)
		case <-ctx.Done():
			s.log.Debug("Task %s stopped", task.Name)
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context, task *Task) {
	s.log.Debug("Running scheduled task: %s", task.Name)
	if err := task.Fn(ctx); err != nil {
		s.log.Error("Error running task %s: %v", task.Name, err)
	}
}
