package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/compiler"
	"github.com/roach88/hotbar/internal/engine"
	"github.com/roach88/hotbar/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	Emit   string // "json" | "toml"
}

// CompilationResult is a built mode table: what the engine will load.
type CompilationResult struct {
	Hash    string         `json:"hash"`
	Enabled bool           `json:"enabled"`
	Initial string         `json:"initial"`
	Modes   []CompiledMode `json:"modes"`

	// Problems lists bindings that were dropped or kept with a warning.
	Problems []string `json:"problems,omitempty"`
}

// CompiledMode is one mode of a CompilationResult.
type CompiledMode struct {
	Name       string            `json:"name"`
	ToggleKeys []ir.KeyID        `json:"toggle_keys,omitempty"`
	Bindings   []CompiledBinding `json:"bindings"`
}

// CompiledBinding is a binding that survived loading, with its identity.
type CompiledBinding struct {
	Index   int               `json:"index"`
	ID      string            `json:"id"`
	Toggle  ir.KeyID          `json:"toggle,omitempty"`
	Trigger ir.KeyID          `json:"trigger"`
	Command string            `json:"command"`
	Params  map[string]string `json:"params,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [config]",
		Short: "Compile a mode table",
		Long: `Compile a CUE or TOML mode table and show what the engine loads.

Each surviving binding is listed with its content hash, which is the id
recorded in traces. Bindings the engine would drop are reported as problems.
With --emit the table is written in its normalized JSON or TOML form instead,
which converts between the two configuration formats. Without an argument
the built-in table is compiled.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, firstArg(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Emit, "emit", "", "emit the table as json or toml")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	switch opts.Emit {
	case "", "json", "toml":
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid --emit %q: must be json or toml", opts.Emit))
	}

	table, err := LoadTable(path)
	if err != nil {
		code, msg := loadErrorParts(err)
		return formatter.Fail(ExitCommandError, code, msg)
	}
	formatter.VerboseLog("Compiling %d mode(s) from %s", len(table.Modes), describeSource(path))

	if opts.Emit != "" {
		data, err := emitTable(*table, opts.Emit)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
		return writeOutput(cmd.OutOrStdout(), opts.Output, data)
	}

	result := buildResult(*table, opts.newLogger(cmd))

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// buildResult builds the table the way a session would.
func buildResult(table ir.ModeTable, logger *slog.Logger) *CompilationResult {
	modes, problems := engine.BuildModes(table, command.DefaultRegistry(), logger)

	result := &CompilationResult{
		Hash:    modes.Hash,
		Enabled: modes.Enabled,
		Initial: modes.Initial,
		Modes:   []CompiledMode{},
	}
	for _, name := range modes.Names() {
		m, _ := modes.Get(name)
		cm := CompiledMode{Name: m.Name, ToggleKeys: m.ToggleKeys, Bindings: []CompiledBinding{}}
		for _, b := range m.Bindings {
			cm.Bindings = append(cm.Bindings, CompiledBinding{
				Index:   b.Index,
				ID:      b.ID,
				Toggle:  b.Spec.Toggle,
				Trigger: b.Spec.Trigger,
				Command: b.Spec.Command,
				Params:  b.Spec.Params,
			})
		}
		result.Modes = append(result.Modes, cm)
	}
	for _, p := range problems {
		result.Problems = append(result.Problems, p.Error())
	}
	return result
}

// emitTable renders the table in the requested configuration format.
func emitTable(table ir.ModeTable, emit string) ([]byte, error) {
	if emit == "toml" {
		return compiler.EncodeTOML(table)
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling table: %w", err)
	}
	return append(data, '\n'), nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed+": writing output file", err)
	}
	return nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d mode(s), initial %s\n", len(result.Modes), result.Initial)
	fmt.Fprintf(w, "  table %s\n", shortHash(result.Hash))
	if !result.Enabled {
		fmt.Fprintln(w, "  (disabled: keys pass through)")
	}
	fmt.Fprintln(w)

	for _, m := range result.Modes {
		fmt.Fprintf(w, "%s:", m.Name)
		if len(m.ToggleKeys) > 0 {
			fmt.Fprintf(w, " toggles %v", m.ToggleKeys)
		}
		fmt.Fprintln(w)
		for _, b := range m.Bindings {
			keys := string(b.Trigger)
			if b.Toggle != "" {
				keys = string(b.Toggle) + "+" + keys
			}
			fmt.Fprintf(w, "  [%d] %s → %s %s  %s\n", b.Index, keys, b.Command, formatParams(b.Params), shortHash(b.ID))
		}
	}

	if len(result.Problems) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Problems:")
		for _, p := range result.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote compiled table to %s\n", outputFile)
	}
	return nil
}

// shortHash truncates a content hash for display.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}

// formatParams formats binding parameters for display.
// Uses sorted keys to ensure deterministic output.
func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, k+"="+params[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
