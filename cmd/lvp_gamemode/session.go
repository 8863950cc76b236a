package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LVPlayground/gamemode/internal/gamemode"
	"github.com/LVPlayground/gamemode/internal/worker"
	"github.com/LVPlayground/gamemode/pkg/hostapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// demoScript drives a tow truck and its trailer through a short life.
var demoScript = [][]string{
	{worker.CommandCreate, `{"modelId":525,"position":{"x":2027.4,"y":1008.2,"z":10.8},"rotation":90}`},
	{worker.CommandCreate, `{"modelId":435,"position":{"x":2027.4,"y":1000.1,"z":10.8},"primaryColor":1,"secondaryColor":1}`},
	{worker.CommandCount},
	{worker.CommandTrailer, "1", "2"},
	{worker.CommandSpawn, "1"},
	{worker.CommandInfo, "2"},
	{worker.CommandDeath, "1"},
	{worker.CommandTrailer, "1", "-1"},
	{worker.CommandDestroy, "2"},
	{worker.CommandCount},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted session against the in-memory host",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, func(call func(command string, args ...string)) error {
			for _, line := range demoScript {
				call(line[0], line[1:]...)
			}
			return nil
		})
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Feed host commands from a file",
	Long: `Each line of the file is a JSON array holding the command followed by its arguments,
e.g. [":VEHICLE:SPAWN:", "12"]. Blank lines and lines starting with # are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open replay file: %w", err)
		}
		defer f.Close()

		return runSession(cmd, func(call func(command string, args ...string)) error {
			return replay(f, call)
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd, replayCmd)
}

// runSession starts a gamemode on the in-memory host, hands every call through the plugin entry
// point and prints the replies.
func runSession(cmd *cobra.Command, script func(call func(command string, args ...string)) error) error {
	configDir, _ := cmd.Flags().GetString("config")
	defer viper.Reset()
	viper.Set("host.type", gamemode.HostMemory)

	rt, err := gamemode.New(gamemode.Options{
		ConfigDir: configDir,
		Version:   CurrentVersion,
		LogWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	hostapi.SetDispatcher(rt.Dispatcher)
	defer hostapi.SetDispatcher(nil)

	out := cmd.OutOrStdout()
	scriptErr := script(func(command string, args ...string) {
		fmt.Fprintln(out, hostapi.HandleArgs(command, args))
	})

	closeErr := rt.Close()
	if scriptErr != nil {
		return scriptErr
	}
	return closeErr
}

func replay(r io.Reader, call func(command string, args ...string)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var parts []string
		if err := json.Unmarshal([]byte(line), &parts); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(parts) == 0 {
			return fmt.Errorf("line %d: missing command", lineNo)
		}
		call(parts[0], parts[1:]...)
	}
	return scanner.Err()
}
