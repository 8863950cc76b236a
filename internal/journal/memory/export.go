package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LVPlayground/gamemode/pkg/core"
)

// SessionExport is the root JSON structure
type SessionExport struct {
	Session  core.Session        `json:"session"`
	EndTime  time.Time           `json:"endTime"`
	Vehicles []VehicleExport     `json:"vehicles"`
	Events   []core.VehicleEvent `json:"events"`
}

// VehicleExport is one vehicle with the events it took part in
type VehicleExport struct {
	core.Vehicle
	Events []core.VehicleEvent `json:"events"`
}

// exportJSON writes the session to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	serverName := strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_").Replace(b.session.ServerName)
	if serverName == "" {
		serverName = "session"
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", serverName, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		Session:  *b.session,
		EndTime:  b.endTime,
		Vehicles: make([]VehicleExport, 0, len(b.history)),
		Events:   make([]core.VehicleEvent, 0, len(b.events)),
	}
	for _, record := range b.history {
		events := record.Events
		if events == nil {
			events = []core.VehicleEvent{}
		}
		export.Vehicles = append(export.Vehicles, VehicleExport{Vehicle: record.Vehicle, Events: events})
	}
	export.Events = append(export.Events, b.events...)
	return export
}

func writeJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if err := json.NewEncoder(gw).Encode(data); err != nil {
		gw.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
