package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/LVPlayground/gamemode/internal/parser"
	"github.com/LVPlayground/gamemode/internal/vehicle"
)

// Functions invoked on the game server through the callback.
const (
	FunctionCreate  = ":HOST:CREATE:"
	FunctionDestroy = ":HOST:DESTROY:"
)

// ErrNoCallback is returned when no callback has been registered yet.
var ErrNoCallback = errors.New("no host callback registered")

// CallFunc delivers function and data to the game server and returns its reply.
type CallFunc func(function, data string) (string, error)

// Callback forwards vehicle requests to the game server through a CallFunc.
type Callback struct {
	call   CallFunc
	logger *slog.Logger
}

func NewCallback(call CallFunc, logger *slog.Logger) *Callback {
	return &Callback{call: call, logger: logger}
}

// CreateVehicle sends the JSON descriptor and expects ["ok", id] back.
func (c *Callback) CreateVehicle(d vehicle.Descriptor) (vehicle.ID, error) {
	if c.call == nil {
		return vehicle.InvalidID, ErrNoCallback
	}

	data, err := json.Marshal(d)
	if err != nil {
		return vehicle.InvalidID, fmt.Errorf("error marshalling descriptor: %w", err)
	}

	reply, err := c.call(FunctionCreate, string(data))
	if err != nil {
		return vehicle.InvalidID, fmt.Errorf("error calling %s: %w", FunctionCreate, err)
	}
	return parser.ParseHostReply(reply)
}

// DestroyVehicle is fire-and-forget; failures are logged.
func (c *Callback) DestroyVehicle(id vehicle.ID) {
	if c.call == nil {
		c.logger.Warn("Cannot destroy vehicle", "vehicleId", id, "error", ErrNoCallback)
		return
	}
	if _, err := c.call(FunctionDestroy, strconv.Itoa(int(id))); err != nil {
		c.logger.Error("Failed to destroy vehicle on host", "vehicleId", id, "error", err)
	}
}
