package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName identifies this module in OTel and GELF records.
const ServiceName = "lvp-gamemode"

// SlogManager manages slog-based logging with optional OTel and Graylog integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	gelfWriter io.WriteCloser
	context    ContextProvider
}

// SetupOption configures optional sinks for Setup.
type SetupOption func(*SlogManager) error

// WithGraylog ships every record as GELF to the given address.
func WithGraylog(address string) SetupOption {
	return func(m *SlogManager) error {
		w, err := gelf.NewWriter(address)
		if err != nil {
			return err
		}
		m.gelfWriter = w
		return nil
	}
}

// WithGELFWriter ships every record to w, which receives one JSON document per record.
func WithGELFWriter(w io.WriteCloser) SetupOption {
	return func(m *SlogManager) error {
		m.gelfWriter = w
		return nil
	}
}

// WithContext injects the attributes returned by provider into every record.
func WithContext(provider ContextProvider) SetupOption {
	return func(m *SlogManager) error {
		m.context = provider
		return nil
	}
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system.
// Records go to file when given, to stdout otherwise. If provider is nil, OTel logging is disabled.
// A failing option is logged and skipped.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, opts ...SetupOption) {
	lvl := parseLevel(level)
	m.logProvider = provider
	m.closeGELF()

	var optErrs []error
	for _, opt := range opts {
		if err := opt(m); err != nil {
			optErrs = append(optErrs, err)
		}
	}

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, handlerOpts))
	}

	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider)))
	}

	if m.gelfWriter != nil {
		handlers = append(handlers, slog.NewJSONHandler(m.gelfWriter, &slog.HandlerOptions{Level: lvl}))
	}

	m.logger = slog.New(withContext(NewFanout(handlers...), m.context))
	m.logger.Info("Logging initialized", "level", level, "graylog", m.gelfWriter != nil)
	for _, err := range optErrs {
		m.logger.Warn("Log sink unavailable", "error", err)
	}
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

// Close flushes pending records and releases the GELF connection.
func (m *SlogManager) Close(ctx context.Context) error {
	err := m.Flush(ctx)
	m.closeGELF()
	return err
}

func (m *SlogManager) closeGELF() {
	if m.gelfWriter != nil {
		_ = m.gelfWriter.Close()
		m.gelfWriter = nil
	}
}
