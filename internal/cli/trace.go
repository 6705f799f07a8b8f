package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Mode     string
	Command  string
	Phase    string
	Limit    int
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  ir.Session    `json:"session"`
	Timeline []ir.Dispatch `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Total    int `json:"total"`
	Execs    int `json:"execs"`
	Noops    int `json:"noops"`
	Ends     int `json:"ends"`
	Switches int `json:"switches"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded sessions",
		Long: `Inspect the dispatch journal recorded by hotbar run.

Without --session, lists every recorded session. With --session, shows the
session's timeline in seq order followed by per-phase counts. The timeline
can be narrowed by mode, command and phase.

Examples:
  hotbar trace --db ./hotbar.db
  hotbar trace --db ./hotbar.db --session 0192...
  hotbar trace --db ./hotbar.db --session 0192... --phase end
  hotbar trace --db ./hotbar.db --session 0192... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to show")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "filter to entries recorded in a mode")
	cmd.Flags().StringVar(&opts.Command, "command", "", "filter to a command name")
	cmd.Flags().StringVar(&opts.Phase, "phase", "", "filter to a phase (exec|noop|end|switch)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of entries (0 for all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch ir.Phase(opts.Phase) {
	case "", ir.PhaseExec, ir.PhaseNoop, ir.PhaseEnd, ir.PhaseSwitch:
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid --phase %q: must be exec, noop, end or switch", opts.Phase))
	}
	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--limit must not be negative")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, formatter)
	}

	sess, _, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error())
	}

	filter := store.TraceFilter{
		Session: opts.Session,
		Mode:    opts.Mode,
		Command: opts.Command,
		Phase:   ir.Phase(opts.Phase),
		Limit:   opts.Limit,
	}
	timeline, err := st.ReadDispatches(ctx, filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error())
	}
	counts, err := st.PhaseCounts(ctx, filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error())
	}

	result := TraceResult{
		Session:  sess,
		Timeline: timeline,
		Stats: TraceStats{
			Execs:    counts[ir.PhaseExec],
			Noops:    counts[ir.PhaseNoop],
			Ends:     counts[ir.PhaseEnd],
			Switches: counts[ir.PhaseSwitch],
		},
	}
	for _, n := range counts {
		result.Stats.Total += n
	}

	if formatter.JSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, Session: sess.Token})
	}
	return outputTraceText(formatter.Writer, result, opts.Verbose)
}

func listSessions(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error())
	}

	if formatter.JSON() {
		return formatter.Success(sessions)
	}

	w := formatter.Writer
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	fmt.Fprintf(w, "%d session(s):\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s  table %s  start %s\n", s.Token, shortHash(s.TableHash), s.InitialMode)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session.Token)
	fmt.Fprintf(w, "Table: %s (engine %s)\n", shortHash(result.Session.TableHash), result.Session.EngineVersion)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	}
	for _, d := range result.Timeline {
		formatTimelineEntry(w, d, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total:    %d\n", result.Stats.Total)
	fmt.Fprintf(w, "  Execs:    %d\n", result.Stats.Execs)
	fmt.Fprintf(w, "  Noops:    %d\n", result.Stats.Noops)
	fmt.Fprintf(w, "  Ends:     %d\n", result.Stats.Ends)
	fmt.Fprintf(w, "  Switches: %d\n", result.Stats.Switches)
	return nil
}

// formatTimelineEntry formats a single journal entry for text output.
func formatTimelineEntry(w io.Writer, d ir.Dispatch, verbose bool) {
	switch d.Phase {
	case ir.PhaseSwitch:
		fmt.Fprintf(w, "  [%d] f%d SWITCH %s -> %s\n", d.Seq, d.Frame, d.Detail, d.Mode)
		return
	case ir.PhaseEnd:
		fmt.Fprintf(w, "  [%d] f%d END  %s/%s slot %d (%s)\n", d.Seq, d.Frame, d.Mode, d.Command, d.Slot, d.Detail)
	case ir.PhaseNoop:
		fmt.Fprintf(w, "  [%d] f%d NOOP %s/%s\n", d.Seq, d.Frame, d.Mode, d.Command)
	default:
		fmt.Fprintf(w, "  [%d] f%d EXEC %s/%s slot %d\n", d.Seq, d.Frame, d.Mode, d.Command, d.Slot)
	}
	if verbose {
		fmt.Fprintf(w, "       binding %d %s\n", d.BindingIndex, shortHash(d.BindingID))
	}
}
