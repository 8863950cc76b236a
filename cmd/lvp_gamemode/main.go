package main

/*
#include <stdlib.h>
*/
import "C" // required for the c-shared build

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/LVPlayground/gamemode/internal/dispatcher"
	"github.com/LVPlayground/gamemode/internal/gamemode"
	"github.com/LVPlayground/gamemode/pkg/hostapi"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion = "0.1.0"
	BuildDate      = "unknown"
)

const (
	commandVersion  = ":VERSION:"
	commandShutdown = ":GAMEMODE:SHUTDOWN:"
)

var (
	pluginRuntime *gamemode.Runtime
	shutdownOnce  sync.Once
)

// init is run automatically when the module is loaded. Inside the server process it starts
// the gamemode; as a standalone binary it leaves everything to the CLI.
func init() {
	hostapi.SetVersion(CurrentVersion)
	if !loadedAsPlugin() {
		return
	}

	rt, err := gamemode.New(gamemode.Options{
		ConfigDir: hostapi.PluginDir(),
		Version:   CurrentVersion,
		HostCall:  hostapi.Call,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lvp_gamemode: failed to start: %v\n", err)
		return
	}
	pluginRuntime = rt
	registerPluginCommands(rt)
	hostapi.SetDispatcher(rt.Dispatcher)
}

// loadedAsPlugin reports whether this code lives in a shared library rather than in the
// running executable.
func loadedAsPlugin() bool {
	module := hostapi.PluginPath()
	if module == "" {
		return false
	}
	exe, err := os.Executable()
	if err != nil {
		return true
	}
	return !samePath(module, exe)
}

func samePath(a, b string) bool {
	if ra, err := filepath.EvalSymlinks(a); err == nil {
		a = ra
	}
	if rb, err := filepath.EvalSymlinks(b); err == nil {
		b = rb
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func registerPluginCommands(rt *gamemode.Runtime) {
	rt.Dispatcher.Register(commandVersion, func(e dispatcher.Event) (any, error) {
		return []string{CurrentVersion, BuildDate}, nil
	})

	// Closing drains the dispatcher, so it cannot run inside a handler.
	rt.Dispatcher.Register(commandShutdown, func(e dispatcher.Event) (any, error) {
		shutdownOnce.Do(func() {
			hostapi.SetDispatcher(nil)
			go func() {
				if err := rt.Close(); err != nil {
					rt.Logger.Error("Error during shutdown", "error", err)
				}
			}()
		})
		return "shutting down", nil
	}, dispatcher.Logged())
}

func main() {
	Execute()
}
