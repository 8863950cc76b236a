package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/LVPlayground/gamemode/internal/util"
	"github.com/LVPlayground/gamemode/internal/vehicle"
)

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// Pawn callers pass cells through float formatting, so ids may arrive with decimals.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// Parser provides pure []string -> typed conversion for host commands.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

func requireArgs(data []string, n int) error {
	if len(data) < n {
		return fmt.Errorf("expected %d args, got %d", n, len(data))
	}
	return nil
}

// ParseVehicleID parses the vehicle id in data[0].
func (p *Parser) ParseVehicleID(data []string) (vehicle.ID, error) {
	if err := requireArgs(data, 1); err != nil {
		return vehicle.InvalidID, err
	}
	util.CleanArgs(data)

	id, err := parseVehicleID(data[0])
	if err != nil {
		return vehicle.InvalidID, fmt.Errorf("error converting vehicleId: %w", err)
	}
	return id, nil
}

func parseVehicleID(s string) (vehicle.ID, error) {
	id, err := parseUintFromFloat(s)
	if err != nil {
		return vehicle.InvalidID, err
	}
	if id >= uint64(vehicle.InvalidID) {
		return vehicle.InvalidID, fmt.Errorf("vehicle id %d out of range", id)
	}
	return vehicle.ID(id), nil
}

// ParseTrailerUpdate parses [vehicleId, trailerId]. A missing, empty, negative or
// 65535 trailer means the vehicle tows nothing. An out of range vehicle id comes back
// as InvalidID so the update is dropped like any other unknown vehicle.
func (p *Parser) ParseTrailerUpdate(data []string) (vehicle.ID, vehicle.ID, error) {
	if err := requireArgs(data, 1); err != nil {
		return vehicle.InvalidID, vehicle.InvalidID, err
	}
	util.CleanArgs(data)

	// Ids the host could never have handed out map to InvalidID, which no vehicle uses.
	raw, err := parseIntFromFloat(data[0])
	if err != nil {
		return vehicle.InvalidID, vehicle.InvalidID, fmt.Errorf("error converting vehicleId: %w", err)
	}
	vehicleID := vehicle.InvalidID
	if raw >= 0 && raw < int64(vehicle.InvalidID) {
		vehicleID = vehicle.ID(raw)
	}

	if len(data) < 2 || data[1] == "" {
		return vehicleID, vehicle.InvalidID, nil
	}

	trailer, err := parseIntFromFloat(data[1])
	if err != nil {
		return vehicle.InvalidID, vehicle.InvalidID, fmt.Errorf("error converting trailerId: %w", err)
	}
	if trailer < 0 || trailer == int64(vehicle.InvalidID) {
		return vehicleID, vehicle.InvalidID, nil
	}
	if trailer > int64(vehicle.InvalidID) {
		return vehicle.InvalidID, vehicle.InvalidID, fmt.Errorf("trailer id %d out of range", trailer)
	}
	return vehicleID, vehicle.ID(trailer), nil
}

// ParseDescriptor parses a JSON creation descriptor from data[0].
// Only the JSON shape is checked here; the manager validates the values.
func (p *Parser) ParseDescriptor(data []string) (vehicle.Descriptor, error) {
	var d vehicle.Descriptor
	if err := requireArgs(data, 1); err != nil {
		return d, err
	}
	util.CleanArgs(data)

	if err := json.Unmarshal([]byte(data[0]), &d); err != nil {
		p.logger.Debug("Malformed vehicle descriptor", "data", data[0], "error", err)
		return d, fmt.Errorf("error unmarshalling vehicle descriptor: %w", err)
	}
	return d, nil
}

// ParseHostReply decodes a host reply of the form ["ok", id] or ["error", message].
func ParseHostReply(reply string) (vehicle.ID, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(reply), &parts); err != nil {
		return vehicle.InvalidID, fmt.Errorf("error unmarshalling host reply %q: %w", reply, err)
	}
	if len(parts) < 2 {
		return vehicle.InvalidID, fmt.Errorf("host reply %q is too short", reply)
	}

	var status string
	if err := json.Unmarshal(parts[0], &status); err != nil {
		return vehicle.InvalidID, fmt.Errorf("error reading host reply status: %w", err)
	}

	switch status {
	case "ok":
		var id float64
		if err := json.Unmarshal(parts[1], &id); err != nil {
			return vehicle.InvalidID, fmt.Errorf("error reading vehicle id from host reply: %w", err)
		}
		if id < 0 || id > float64(vehicle.InvalidID) || id != float64(uint16(id)) {
			return vehicle.InvalidID, fmt.Errorf("host reply id %v out of range", id)
		}
		return vehicle.ID(id), nil
	case "error":
		var msg string
		if err := json.Unmarshal(parts[1], &msg); err != nil {
			msg = string(parts[1])
		}
		return vehicle.InvalidID, fmt.Errorf("host error: %s", msg)
	default:
		return vehicle.InvalidID, fmt.Errorf("unknown host reply status %q", status)
	}
}
