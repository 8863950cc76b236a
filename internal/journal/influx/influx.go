// Package influx implements the journal.Backend interface on InfluxDB.
// When the server cannot be reached, points are appended in line protocol to a gzip
// backup file so they can be imported later.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/pkg/core"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
)

// Measurement names
const (
	MeasurementSessions = "vehicle_sessions"
	MeasurementVehicles = "vehicles"
	MeasurementEvents   = "vehicle_events"
)

const (
	writeTimeout    = 5 * time.Second
	retentionPeriod = 60 * 60 * 24 * 90 // 90 days
)

// ErrNoSession is returned when records arrive before StartSession.
var ErrNoSession = errors.New("no journal session started")

// Backend writes journal records as InfluxDB points.
type Backend struct {
	cfg    config.InfluxConfig
	logger *slog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPIBlocking

	mu         sync.Mutex
	session    *core.Session
	backupFile *os.File
	backup     *gzip.Writer
}

// New creates a new InfluxDB journal backend.
func New(cfg config.InfluxConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{cfg: cfg, logger: logger}
}

// BackupPath returns the file points go to while the server is unreachable.
func (b *Backend) BackupPath() string {
	return filepath.Join(b.cfg.BackupDir, b.cfg.Bucket+"_backup.lp.gz")
}

// Connected reports whether points are sent to the server.
func (b *Backend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writer != nil
}

// Init connects to the server, falling back to the backup file if it does not answer.
func (b *Backend) Init() error {
	b.client = influxdb2.NewClientWithOptions(b.cfg.URL(), b.cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(uint(writeTimeout.Seconds())))

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	running, err := b.client.Ping(ctx)
	if err != nil || !running {
		b.logger.Warn("InfluxDB unreachable, writing to backup file", "url", b.cfg.URL(), "backupPath", b.BackupPath(), "error", err)
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.openBackup()
	}

	b.provision(ctx)
	b.mu.Lock()
	b.writer = b.client.WriteAPIBlocking(b.cfg.Org, b.cfg.Bucket)
	b.mu.Unlock()
	b.logger.Info("InfluxDB client initialized", "url", b.cfg.URL(), "bucket", b.cfg.Bucket)
	return nil
}

// provision makes sure the organization and bucket exist. Failures are logged only; the
// token may lack the permissions while the bucket already exists.
func (b *Backend) provision(ctx context.Context) {
	orgs := b.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, b.cfg.Org)
	if err != nil {
		b.logger.Info("Organization not found, creating", "org", b.cfg.Org)
		org, err = orgs.CreateOrganizationWithName(ctx, b.cfg.Org)
		if err != nil {
			b.logger.Warn("Error creating organization", "org", b.cfg.Org, "error", err)
			return
		}
	}

	buckets := b.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, b.cfg.Bucket); err == nil {
		return
	}
	b.logger.Info("Bucket not found, creating", "bucket", b.cfg.Bucket)
	rule := domain.RetentionRuleTypeExpire
	_, err = buckets.CreateBucketWithName(ctx, org, b.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionPeriod,
	})
	if err != nil {
		b.logger.Warn("Error creating bucket", "bucket", b.cfg.Bucket, "error", err)
	}
}

// openBackup must be called with b.mu held.
func (b *Backend) openBackup() error {
	if b.backup != nil {
		return nil
	}
	if err := os.MkdirAll(b.cfg.BackupDir, 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}
	file, err := os.OpenFile(b.BackupPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	b.backupFile = file
	b.backup = gzip.NewWriter(file)
	return nil
}

// Close flushes the backup file and releases the client.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.backup != nil {
		errs = append(errs, b.backup.Close(), b.backupFile.Close())
		b.backup, b.backupFile = nil, nil
	}
	if b.client != nil {
		b.client.Close()
		b.client = nil
	}
	b.writer = nil
	return errors.Join(errs...)
}

// StartSession writes a session start marker.
func (b *Backend) StartSession(session *core.Session) error {
	b.mu.Lock()
	s := *session
	b.session = &s
	b.mu.Unlock()

	p := sessionPoint(session).
		AddField("state", "started").
		AddField("version", session.Version).
		SetTime(session.StartTime)
	return b.writePoint(p)
}

// EndSession writes a session end marker.
func (b *Backend) EndSession(end time.Time) error {
	session, err := b.currentSession()
	if err != nil {
		return err
	}
	p := sessionPoint(session).
		AddField("state", "ended").
		AddField("duration_s", end.Sub(session.StartTime).Seconds()).
		SetTime(end)
	return b.writePoint(p)
}

// RecordVehicle writes a vehicle snapshot point.
func (b *Backend) RecordVehicle(v *core.Vehicle) error {
	session, err := b.currentSession()
	if err != nil {
		return err
	}
	p := influxdb2_write.NewPointWithMeasurement(MeasurementVehicles).
		AddTag("session", session.ID).
		AddTag("vehicle_id", strconv.Itoa(int(v.ID))).
		AddTag("model_id", strconv.Itoa(v.ModelID)).
		AddField("x", v.Position.X).
		AddField("y", v.Position.Y).
		AddField("z", v.Position.Z).
		AddField("rotation", v.Rotation).
		AddField("primary_color", v.PrimaryColor).
		AddField("secondary_color", v.SecondaryColor).
		AddField("paintjob", v.Paintjob).
		AddField("interior", v.InteriorID).
		AddField("virtual_world", v.VirtualWorld).
		SetTime(v.Time)
	return b.writePoint(p)
}

// RecordEvent writes a lifecycle event point.
func (b *Backend) RecordEvent(e *core.VehicleEvent) error {
	session, err := b.currentSession()
	if err != nil {
		return err
	}
	p := influxdb2_write.NewPointWithMeasurement(MeasurementEvents).
		AddTag("session", session.ID).
		AddTag("type", string(e.Type)).
		AddTag("vehicle_id", strconv.Itoa(int(e.VehicleID))).
		AddTag("model_id", strconv.Itoa(e.ModelID)).
		AddField("x", e.Position.X).
		AddField("y", e.Position.Y).
		AddField("z", e.Position.Z).
		SetTime(e.Time)
	if e.TrailerID != nil {
		p.AddField("trailer_id", int(*e.TrailerID))
	}
	return b.writePoint(p)
}

func sessionPoint(session *core.Session) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementSessions).AddTag("session", session.ID)
	if session.ServerName != "" {
		p.AddTag("server", session.ServerName)
	}
	return p
}

func (b *Backend) currentSession() (*core.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil, ErrNoSession
	}
	return b.session, nil
}

// writePoint sends p to the server. A failed write moves the point to the backup file.
func (b *Backend) writePoint(p *influxdb2_write.Point) error {
	b.mu.Lock()
	writer := b.writer
	b.mu.Unlock()

	if writer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := writer.WritePoint(ctx, p)
		cancel()
		if err == nil {
			return nil
		}
		b.logger.Error("Error sending data to InfluxDB", "bucket", b.cfg.Bucket, "error", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.openBackup(); err != nil {
		return err
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if _, err := b.backup.Write([]byte(line)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}
