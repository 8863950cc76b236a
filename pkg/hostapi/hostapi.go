// Package hostapi is the boundary between the game server plugin loader and the gamemode.
// Calls arrive as a command string plus arguments, are routed through the dispatcher and
// answered with a JSON array the server script can parse.
package hostapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/dispatcher"
	"github.com/LVPlayground/gamemode/internal/util"
)

// CommandTimestamp is answered without the dispatcher.
const CommandTimestamp = ":TIMESTAMP:"

// ErrNoCallback is returned by Call before the server registered its callback.
var ErrNoCallback = errors.New("no server callback registered")

// callbackFunc delivers function and data to the server and returns its reply.
type callbackFunc func(function, data string) (string, error)

type configStruct struct {
	mu sync.RWMutex

	// version is returned when the server asks for the plugin version
	version string

	// dispatcher handles event routing
	dispatcher *dispatcher.Dispatcher

	// callback reaches back into the server
	callback callbackFunc
}

// Config defines how calls to this plugin are handled.
var Config = configStruct{version: "No version set"}

// SetVersion sets the version string returned to the server.
func SetVersion(version string) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.version = version
}

// Version returns the version string set with SetVersion.
func Version() string {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.version
}

// SetDispatcher sets the event dispatcher for handling commands.
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set.
func GetDispatcher() *dispatcher.Dispatcher {
	Config.mu.RLock()
	defer Config.mu.RUnlock()
	return Config.dispatcher
}

func setCallback(fn callbackFunc) {
	Config.mu.Lock()
	defer Config.mu.Unlock()
	Config.callback = fn
}

// Call invokes a function on the server through the registered callback.
// It satisfies host.CallFunc.
func Call(function, data string) (string, error) {
	Config.mu.RLock()
	fn := Config.callback
	Config.mu.RUnlock()

	if fn == nil {
		return "", ErrNoCallback
	}
	return fn(function, data)
}

// HandleCommand routes pipe-delimited calls ("command|a|b"). An input registered as a
// command of its own is dispatched whole, without arguments.
func HandleCommand(input string) string {
	if input == CommandTimestamp {
		return getTimestamp()
	}

	d := GetDispatcher()
	if d != nil {
		if d.HasHandler(input) {
			return dispatch(d, input, nil)
		}
		if command, args := util.SplitCommand(input); d.HasHandler(command) {
			return dispatch(d, command, args)
		}
	}
	return formatDispatchResponse(input, nil, errors.New("no handler registered"))
}

// HandleArgs routes calls carrying a separate argument list.
func HandleArgs(command string, args []string) string {
	d := GetDispatcher()
	if d == nil || !d.HasHandler(command) {
		return formatDispatchResponse(command, nil, errors.New("no handler registered"))
	}
	return dispatch(d, command, args)
}

func dispatch(d *dispatcher.Dispatcher, command string, args []string) string {
	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatDispatchResponse(command, result, err)
}

// formatDispatchResponse formats the dispatcher result for the server:
// ["ok", command, result], ["ok", command] or ["error", command, message].
func formatDispatchResponse(command string, result any, err error) string {
	reply := []any{"ok", command}
	switch {
	case err != nil:
		reply = []any{"error", command, err.Error()}
	case result != nil:
		reply = append(reply, result)
	}

	data, mErr := json.Marshal(reply)
	if mErr != nil {
		data, _ = json.Marshal([]any{"error", command, fmt.Sprintf("error marshalling result: %v", mErr)})
	}
	return string(data)
}

func getTimestamp() string {
	return fmt.Sprintf("%d", time.Now().UTC().UnixNano())
}
