package monitor

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/seaplan/mplan/internal/cache"
	"github.com/seaplan/mplan/internal/worker"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Templates *cache.Templates
	Worker    *worker.Manager
	// Pending reports frames waiting on the vehicle link. Nil without a link.
	Pending    func() int
	Logger     *slog.Logger
	StatusPath string
	Interval   time.Duration
}

// Status is a snapshot of the running service.
type Status struct {
	Time         time.Time      `json:"time"`
	CacheEntries int            `json:"cacheEntries"`
	CacheHits    uint64         `json:"cacheHits"`
	CacheMisses  uint64         `json:"cacheMisses"`
	LinkPending  int            `json:"linkPending"`
	Received     map[string]int `json:"received"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = 5 * time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus collects the current status.
func (s *Service) GetStatus() Status {
	st := Status{Time: time.Now().UTC(), Received: map[string]int{}}
	if s.deps.Templates != nil {
		st.CacheEntries = s.deps.Templates.Len()
		st.CacheHits, st.CacheMisses = s.deps.Templates.Stats()
	}
	if s.deps.Pending != nil {
		st.LinkPending = s.deps.Pending()
	}
	if s.deps.Worker != nil {
		st.Received = s.deps.Worker.ReceivedCounts()
	}
	return st
}

// WriteStatus replaces the status file with the current status.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return err
	}
	tmp := s.deps.StatusPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.deps.StatusPath)
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stopChan, s.done)
}

func (s *Service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	s.deps.Logger.Debug("Starting status monitor", "path", s.deps.StatusPath, "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.deps.StatusPath == "" {
				st := s.GetStatus()
				s.deps.Logger.Debug("status", "cacheEntries", st.CacheEntries, "linkPending", st.LinkPending)
				continue
			}
			if err := s.WriteStatus(); err != nil {
				s.deps.Logger.Error("Error writing status file", "error", err)
			}
		}
	}
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
