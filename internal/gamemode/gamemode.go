// Package gamemode wires the vehicle manager to its host, the command dispatcher, the
// journal and the ambient logging and telemetry stack.
package gamemode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/internal/dispatcher"
	"github.com/LVPlayground/gamemode/internal/host"
	"github.com/LVPlayground/gamemode/internal/journal"
	"github.com/LVPlayground/gamemode/internal/journal/backend"
	"github.com/LVPlayground/gamemode/internal/logging"
	"github.com/LVPlayground/gamemode/internal/monitor"
	intOtel "github.com/LVPlayground/gamemode/internal/otel"
	"github.com/LVPlayground/gamemode/internal/parser"
	"github.com/LVPlayground/gamemode/internal/vehicle"
	"github.com/LVPlayground/gamemode/internal/worker"
	"github.com/LVPlayground/gamemode/pkg/core"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Name is used for log files and the OTel service.
const Name = "lvp_gamemode"

// Host runtime types accepted in host.type.
const (
	HostMemory   = "memory"
	HostCallback = "callback"
)

// JournalDisabled turns the journal off when used as journal.type.
const JournalDisabled = "none"

// Options configures a Runtime.
type Options struct {
	// ConfigDir holds lvp_gamemode.cfg.json. A missing file leaves the defaults in place.
	ConfigDir string
	Version   string

	// HostCall reaches the game server when host.type is "callback".
	HostCall host.CallFunc

	// LogWriter replaces the session log file.
	LogWriter io.Writer

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Runtime is one running gamemode session.
type Runtime struct {
	Logger     *slog.Logger
	Host       vehicle.Host
	Vehicles   *vehicle.Manager
	Dispatcher *dispatcher.Dispatcher
	Recorder   *journal.Recorder // nil when the journal is disabled
	Monitor    *monitor.Service

	session    core.Session
	logManager *logging.SlogManager
	logFile    *os.File
	otelFile   *os.File
	otel       *intOtel.Provider
	closed     bool
}

// New loads configuration and starts every component of the gamemode.
func New(opts Options) (*Runtime, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	start := opts.Clock()

	configErr := config.Load(opts.ConfigDir)

	r := &Runtime{
		session: core.Session{
			ID:         uuid.NewString(),
			ServerName: config.GetString("serverName"),
			StartTime:  start,
			Version:    opts.Version,
		},
		logManager: logging.NewSlogManager(),
	}

	ok := false
	defer func() {
		if !ok {
			r.release()
		}
	}()

	logWriter, err := r.openLogs(opts, start)
	if err != nil {
		return nil, err
	}
	r.setupLogging(logWriter)
	if configErr != nil {
		r.Logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		r.Logger.Info("Loaded config", "dir", opts.ConfigDir)
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(dispatcherLogger(logWriter)), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	r.Dispatcher = d

	hostCfg := config.GetHostConfig()
	switch hostCfg.Type {
	case HostMemory:
		r.Host = host.NewMemory(hostCfg.MaxVehicles)
	case HostCallback:
		r.Host = host.NewCallback(opts.HostCall, r.Logger)
	default:
		return nil, fmt.Errorf("unknown host type: %s", hostCfg.Type)
	}

	r.Vehicles, err = vehicle.NewManager(vehicle.Dependencies{Host: r.Host, Logger: r.Logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle manager: %w", err)
	}

	if err := r.startJournal(opts.Clock); err != nil {
		return nil, err
	}

	worker.NewManager(worker.Dependencies{
		Vehicles:      r.Vehicles,
		ParserService: parser.NewParser(r.Logger),
		Logger:        r.Logger,
	}).RegisterHandlers(d)

	monitorDeps := monitor.Dependencies{
		Dispatcher: d,
		Logger:     r.Logger,
		Interval:   config.GetMonitorConfig().Interval,
		StatusFile: filepath.Join(config.GetString("logsDir"), "status.json"),
	}
	if r.Recorder != nil {
		monitorDeps.Journal = r.Recorder
	}
	r.Monitor = monitor.NewService(monitorDeps)
	if err := r.Monitor.Start(); err != nil {
		r.Logger.Warn("Status monitor unavailable", "error", err)
	}

	ok = true
	r.Logger.Info("Gamemode started", "version", opts.Version, "host", hostCfg.Type)
	return r, nil
}

// openLogs creates the session log file unless a writer was given, and starts OTel.
func (r *Runtime) openLogs(opts Options, start time.Time) (io.Writer, error) {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logWriter := opts.LogWriter
	if logWriter == nil {
		path := logging.LogFilePath(logsDir, Name, start)
		if _, err := os.Stat(path); err == nil {
			_ = os.Rename(path, path+".old")
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		r.logFile = f
		logWriter = f
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		f, err := os.OpenFile(logging.LogFilePath(logsDir, Name+".otel", start), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open OTel file: %w", err)
		}
		r.otelFile = f

		r.otel, err = intOtel.New(intOtel.Config{
			Enabled:      true,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    f,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
			MetricWriter: f,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTel provider: %w", err)
		}
	}
	return logWriter, nil
}

func (r *Runtime) setupLogging(w io.Writer) {
	var provider *sdklog.LoggerProvider
	if r.otel != nil {
		provider = r.otel.LoggerProvider()
	}

	opts := []logging.SetupOption{
		logging.WithContext(func() []slog.Attr {
			return []slog.Attr{slog.String("sessionId", r.session.ID)}
		}),
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		opts = append(opts, logging.WithGraylog(gl.Address))
	}

	r.logManager.Setup(w, config.GetString("logLevel"), provider, opts...)
	r.Logger = r.logManager.Logger()
}

// dispatcherLogger writes dispatcher traces as JSON lines next to the slog output.
func dispatcherLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString("logLevel")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", "dispatcher").Logger()
}

func (r *Runtime) startJournal(clock func() time.Time) error {
	cfg := config.GetJournalConfig()
	if cfg.Type == JournalDisabled {
		r.Logger.Info("Journal disabled")
		return nil
	}

	b, err := backend.New(cfg, r.Logger)
	if err != nil {
		return err
	}
	r.Recorder, err = journal.NewRecorder(journal.Options{
		Backend:       b,
		Session:       r.session,
		FlushInterval: cfg.FlushInterval,
		Logger:        r.Logger,
		Clock:         clock,
	})
	if err != nil {
		return err
	}
	return r.Vehicles.AddObserver(r.Recorder)
}

// Session returns the journal session of this run.
func (r *Runtime) Session() core.Session {
	return r.session
}

// Dispatch sends one host command through the dispatcher.
func (r *Runtime) Dispatch(command string, args ...string) (any, error) {
	return r.Dispatcher.Dispatch(dispatcher.Event{Command: command, Args: args, Timestamp: time.Now()})
}

// Close stops the monitor, drains queued host commands, disposes every vehicle on the
// dispatcher thread and flushes the journal and the logs.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	r.Monitor.Stop()
	r.Dispatcher.Close()
	r.Dispatcher.Run(r.Vehicles.Dispose)

	var errs []error
	if r.Recorder != nil {
		if err := r.Recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.Logger.Info("Gamemode stopped", "sessionId", r.session.ID)

	errs = append(errs, r.release())
	return errors.Join(errs...)
}

// release flushes telemetry and closes the files opened by New.
func (r *Runtime) release() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if r.Dispatcher != nil && !r.closed {
		r.Dispatcher.Close()
	}
	if r.Recorder != nil && !r.closed {
		_ = r.Recorder.Close()
	}
	if err := r.logManager.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.otel != nil {
		if err := r.otel.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range []*os.File{r.otelFile, r.logFile} {
		if f != nil {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
