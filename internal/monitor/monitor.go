// Package monitor periodically reports the health of the running gamemode.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/dispatcher"
	"github.com/LVPlayground/gamemode/internal/worker"
)

// DefaultInterval is used when Dependencies.Interval is zero.
const DefaultInterval = time.Minute

// JournalStats is the part of the journal recorder the monitor reads.
type JournalStats interface {
	QueueLen() int
	Dropped() uint64
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Dispatcher *dispatcher.Dispatcher
	Journal    JournalStats // optional
	Logger     *slog.Logger
	Interval   time.Duration

	// StatusFile is rewritten with the latest Status on every tick when set.
	StatusFile string
}

// Status is one health sample.
type Status struct {
	Time            time.Time `json:"time"`
	Vehicles        int       `json:"vehicles"`
	DispatcherQueue int       `json:"dispatcherQueue"`
	JournalQueue    int       `json:"journalQueue"`
	JournalDropped  uint64    `json:"journalDropped"`
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
		deps.Interval = DefaultInterval
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus samples the current status. The vehicle count is read through the
// dispatcher, so it is taken between two handlers.
func (s *Service) GetStatus() (Status, error) {
	status := Status{
		Time:            time.Now(),
		DispatcherQueue: s.deps.Dispatcher.QueueLen(),
	}

	result, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{Command: worker.CommandCount, Timestamp: status.Time})
	if err != nil {
		return status, fmt.Errorf("failed to count vehicles: %w", err)
	}
	count, ok := result.(int)
	if !ok {
		return status, fmt.Errorf("unexpected vehicle count result: %T", result)
	}
	status.Vehicles = count

	if s.deps.Journal != nil {
		status.JournalQueue = s.deps.Journal.QueueLen()
		status.JournalDropped = s.deps.Journal.Dropped()
	}
	return status, nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	var statusFile *os.File
	if s.deps.StatusFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.deps.StatusFile), 0755); err != nil {
			return fmt.Errorf("error creating status directory: %w", err)
		}
		f, err := os.Create(s.deps.StatusFile)
		if err != nil {
			return fmt.Errorf("error creating status file: %w", err)
		}
		statusFile = f
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(statusFile, s.stopChan, s.done)
	return nil
}

func (s *Service) run(statusFile *os.File, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if statusFile != nil {
		defer statusFile.Close()
	}

	logger := s.deps.Logger
	logger.Debug("Starting status monitor", "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			status, err := s.GetStatus()
			if err != nil {
				logger.Error("Error sampling status", "error", err)
				continue
			}
			logger.Info("Gamemode status",
				"vehicles", status.Vehicles,
				"dispatcherQueue", status.DispatcherQueue,
				"journalQueue", status.JournalQueue,
				"journalDropped", status.JournalDropped)

			if statusFile != nil {
				if err := writeStatus(statusFile, status); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}
}

func writeStatus(f *os.File, status Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
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
