package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/engine"
	"github.com/roach88/hotbar/internal/harness"
	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/store"
	"github.com/roach88/hotbar/internal/world"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	World    string
	Frame    time.Duration

	// SessionGenerator allows overriding the session token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionTokenGenerator
}

// RunSummary describes a finished session.
type RunSummary struct {
	Session    string `json:"session"`
	TableHash  string `json:"table_hash"`
	Frames     int64  `json:"frames"`
	Dispatches int    `json:"dispatches"`
	Calls      int    `json:"calls"`
	ActiveMode string `json:"active_mode"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [config]",
		Short: "Drive a simulated player from stdin",
		Long: `Start a session: load the mode table, then read input lines from stdin
and apply them to a simulated player at a fixed frame rate. Every dispatch is
recorded to the SQLite database under a fresh session token.

Input lines:
  down <key>      press a key
  up <key>        release a key
  press <key>     press and release a key
  switch [mode]   change mode (empty returns to the previous mode)
  cancel          end every active command
Blank lines and lines starting with # are ignored. The session ends at end
of input or on Ctrl-C.

The player starts with a small mining inventory unless --world names a YAML
file in the scenario world format.

Example:
  printf 'press ControllerStart\ndown LeftShoulder\n' | hotbar run --db ./hotbar.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, firstArg(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.World, "world", "", "YAML file describing the starting world")
	cmd.Flags().DurationVar(&opts.Frame, "frame", engine.DefaultFrameInterval, "frame interval")

	return cmd
}

func runSession(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.newLogger(cmd)

	table, err := LoadTable(path)
	if err != nil {
		code, msg := loadErrorParts(err)
		return formatter.Fail(ExitCommandError, code, msg)
	}

	modes, problems := engine.BuildModes(*table, command.DefaultRegistry(), logger)
	// Dropped bindings do not stop the session; the rest of each mode loads.
	for _, p := range problems {
		formatter.VerboseLog("config: %v", p)
	}

	sim, err := loadWorld(opts.World)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load world", err)
	}

	ctrl, err := engine.NewController(modes, sim, engine.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to start controller", err)
	}

	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.SessionGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	sess := ir.Session{
		Token:         gen.Generate(),
		TableHash:     modes.Hash,
		InitialMode:   modes.Initial,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}

	// The sink also runs for the final flush after cancellation, so it
	// writes under the parent context.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	if err := st.WriteSession(parentCtx, sess, *table); err != nil {
		return WrapExitError(ExitCommandError, "failed to record session", err)
	}

	written := 0
	runner := engine.NewRunner(ctrl,
		engine.WithFrameInterval(opts.Frame),
		engine.WithBeforeTick(sim.Advance),
		engine.WithRunnerLogger(logger),
		engine.WithSink(func(batch []ir.Dispatch) error {
			n, err := st.WriteDispatches(parentCtx, sess.Token, batch)
			written += n
			return err
		}),
	)

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		defer cancel()
		if err := feedInput(cmd.InOrStdin(), ctrl, logger); err != nil {
			logger.Error("reading input", "error", err)
		}
	}()

	formatter.VerboseLog("Session %s started in mode %s", sess.Token, ctrl.ActiveMode())

	if err := runner.Run(ctx); err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "frame loop error", err)
	}

	summary := RunSummary{
		Session:    sess.Token,
		TableHash:  sess.TableHash,
		Frames:     ctrl.Frame(),
		Dispatches: written,
		Calls:      len(sim.Calls()),
		ActiveMode: ctrl.ActiveMode(),
	}
	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: summary, Session: summary.Session})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Session: %s\n", summary.Session)
	fmt.Fprintf(w, "  Frames:     %d\n", summary.Frames)
	fmt.Fprintf(w, "  Dispatches: %d\n", summary.Dispatches)
	fmt.Fprintf(w, "  World calls: %d\n", summary.Calls)
	fmt.Fprintf(w, "  Final mode: %s\n", summary.ActiveMode)
	for _, msg := range sim.Messages() {
		fmt.Fprintf(w, "  message: %s\n", msg)
	}
	return nil
}

// feedInput enqueues one event per input line until r is exhausted.
// Malformed lines are logged and skipped.
func feedInput(r io.Reader, ctrl *engine.Controller, logger *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		events, err := parseInputLine(scanner.Text())
		if err != nil {
			logger.Warn("skipping input line", "line", line, "error", err)
			continue
		}
		for _, ev := range events {
			if !ctrl.Enqueue(ev) {
				return nil
			}
		}
	}
	return scanner.Err()
}

// parseInputLine parses one line of run input.
func parseInputLine(text string) ([]engine.InputEvent, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil, nil
	}

	verb := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	if len(fields) > 2 {
		return nil, fmt.Errorf("%s: too many arguments", verb)
	}

	switch verb {
	case "down", "up", "press":
		if arg == "" {
			return nil, fmt.Errorf("%s: key is required", verb)
		}
		key := ir.KeyID(arg)
		switch verb {
		case "down":
			return []engine.InputEvent{engine.KeyDown(key)}, nil
		case "up":
			return []engine.InputEvent{engine.KeyUp(key)}, nil
		default:
			return []engine.InputEvent{engine.KeyDown(key), engine.KeyUp(key)}, nil
		}
	case "switch":
		return []engine.InputEvent{{Type: engine.EventSwitch, Mode: arg}}, nil
	case "cancel":
		if arg != "" {
			return nil, fmt.Errorf("cancel: takes no arguments")
		}
		return []engine.InputEvent{{Type: engine.EventCancel}}, nil
	default:
		return nil, fmt.Errorf("unknown input %q", fields[0])
	}
}

// loadWorld builds the simulated player from a world file, or the starter
// inventory when path is empty.
func loadWorld(path string) (*world.Sim, error) {
	if path == "" {
		return starterWorld(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec harness.WorldSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return harness.NewSim(spec), nil
}

// starterWorld is a mining loadout that exercises every built-in binding.
func starterWorld() *world.Sim {
	return harness.NewSim(harness.WorldSpec{
		Inventory: []*harness.ItemSpec{
			{Name: "Pickaxe", Kind: string(world.KindTool), Tool: string(world.ToolPickaxe)},
			{Name: "Rusty Sword", Kind: string(world.KindMeleeWeapon), Tool: string(world.ToolSword), Price: 50},
			{Name: "Stone", Kind: string(world.KindObject), Stack: 150},
			{Name: "Salmonberry", Kind: string(world.KindObject), Edibility: 5, Price: 5, Stack: 10},
			{Name: "Field Snack", Kind: string(world.KindObject), Edibility: 18, Price: 20, Stack: 3},
		},
		Recipes: []string{"Staircase", "Torch"},
	})
}
