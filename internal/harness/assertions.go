package harness

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/store"
	"github.com/roach88/hotbar/internal/world"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []ir.Dispatch // Full journal for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, d := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] frame %d %s %s/%s slot %d", d.Seq, d.Frame, d.Phase, d.Mode, d.Command, d.Slot)
			if d.Detail != "" {
				fmt.Fprintf(&buf, " (%s)", d.Detail)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// matchCall reports whether c satisfies the op, item, slot and arg of a.
// Unset fields match anything.
func matchCall(c world.Call, a Assertion) bool {
	if c.Op != a.Op {
		return false
	}
	if a.Item != "" && c.Item != a.Item {
		return false
	}
	if a.Slot != nil && c.Slot != *a.Slot {
		return false
	}
	if a.Arg != "" && c.Arg != a.Arg {
		return false
	}
	return true
}

func describeCall(a Assertion) string {
	parts := []string{a.Op}
	if a.Item != "" {
		parts = append(parts, "item="+a.Item)
	}
	if a.Slot != nil {
		parts = append(parts, "slot="+strconv.Itoa(*a.Slot))
	}
	if a.Arg != "" {
		parts = append(parts, "arg="+a.Arg)
	}
	return strings.Join(parts, " ")
}

func formatCalls(calls []world.Call) string {
	if len(calls) == 0 {
		return "(no calls)"
	}
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = fmt.Sprintf("%s(%d,%s,%s)", c.Op, c.Slot, c.Item, c.Arg)
	}
	return strings.Join(parts, " ")
}

// assertCallContains checks that some world call matches the assertion.
func assertCallContains(result *Result, a Assertion) error {
	for _, c := range result.Calls {
		if matchCall(c, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertCallContains,
		Expected: describeCall(a),
		Actual:   formatCalls(result.Calls),
		Trace:    result.Trace,
	}
}

// assertCallOrder checks if ops appear in the specified order.
// Ops don't need to be consecutive (intervening calls are allowed).
func assertCallOrder(result *Result, a Assertion) error {
	next := 0
	for _, c := range result.Calls {
		if next < len(a.Ops) && c.Op == a.Ops[next] {
			next++
		}
	}
	if next == len(a.Ops) {
		return nil
	}

	actual := fmt.Sprintf("%s not found after %v", a.Ops[next], a.Ops[:next])
	if !slices.ContainsFunc(result.Calls, func(c world.Call) bool { return c.Op == a.Ops[next] }) {
		actual = fmt.Sprintf("missing op: %s", a.Ops[next])
	}
	return &AssertionError{
		Type:     AssertCallOrder,
		Expected: fmt.Sprintf("ops in order: %v", a.Ops),
		Actual:   actual,
		Trace:    result.Trace,
	}
}

// assertCallCount checks if the matching calls appear exactly Count times.
func assertCallCount(result *Result, a Assertion) error {
	count := 0
	for _, c := range result.Calls {
		if matchCall(c, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, describeCall(a)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertDispatchCount counts journal rows in the store. Going through the
// store checks that the journal was persisted, not just produced.
func assertDispatchCount(actx *AssertionContext, result *Result, a Assertion) error {
	rows, err := actx.Store.ReadDispatches(actx.Ctx, store.TraceFilter{
		Session: actx.Session,
		Mode:    a.Mode,
		Command: a.Command,
		Phase:   ir.Phase(a.Phase),
	})
	if err != nil {
		return fmt.Errorf("dispatch_count: %w", err)
	}
	if len(rows) != a.Count {
		return &AssertionError{
			Type:     AssertDispatchCount,
			Expected: fmt.Sprintf("%d entries with phase=%q command=%q mode=%q", a.Count, a.Phase, a.Command, a.Mode),
			Actual:   fmt.Sprintf("%d entries", len(rows)),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertActiveMode(result *Result, a Assertion) error {
	if result.ActiveMode != a.Mode {
		return &AssertionError{
			Type:     AssertActiveMode,
			Expected: a.Mode,
			Actual:   result.ActiveMode,
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertMessageContains(result *Result, a Assertion) error {
	for _, m := range result.Messages {
		if strings.Contains(m, a.Message) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertMessageContains,
		Expected: fmt.Sprintf("message containing %q", a.Message),
		Actual:   fmt.Sprintf("%q", result.Messages),
	}
}

func assertConfigError(result *Result, a Assertion) error {
	if slices.Contains(result.ConfigErrors, a.Code) {
		return nil
	}
	return &AssertionError{
		Type:     AssertConfigError,
		Expected: fmt.Sprintf("config problem %s", a.Code),
		Actual:   fmt.Sprintf("%v", result.ConfigErrors),
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store   *store.Store
	Ctx     context.Context
	Session string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for dispatch_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCallContains:
			err = assertCallContains(result, assertion)
		case AssertCallOrder:
			err = assertCallOrder(result, assertion)
		case AssertCallCount:
			err = assertCallCount(result, assertion)
		case AssertDispatchCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: dispatch_count requires database context", i)
			} else {
				err = assertDispatchCount(actx, result, assertion)
			}
		case AssertActiveMode:
			err = assertActiveMode(result, assertion)
		case AssertMessageContains:
			err = assertMessageContains(result, assertion)
		case AssertConfigError:
			err = assertConfigError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
