package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/world"
)

// TraceSnapshot captures the journal and world calls of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Session      string        `json:"session,omitempty"`
	Trace        []ir.Dispatch `json:"trace"`
	Calls        []world.Call  `json:"calls"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// Binding ids are content hashes of the table and are left out so golden
// files stay readable and survive hash changes.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, d := range s.Trace {
		entry := map[string]any{
			"seq":           d.Seq,
			"frame":         d.Frame,
			"phase":         d.Phase,
			"mode":          d.Mode,
			"binding_index": d.BindingIndex,
			"slot":          d.Slot,
		}
		if d.Command != "" {
			entry["command"] = d.Command
		}
		if d.Detail != "" {
			entry["detail"] = d.Detail
		}
		traceList[i] = entry
	}

	callList := make([]any, len(s.Calls))
	for i, c := range s.Calls {
		entry := map[string]any{
			"op":   c.Op,
			"slot": c.Slot,
		}
		if c.Item != "" {
			entry["item"] = c.Item
		}
		if c.Arg != "" {
			entry["arg"] = c.Arg
		}
		callList[i] = entry
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"calls":         callList,
	}
	if s.Session != "" {
		result["session"] = s.Session
	}
	return result
}

// RunWithGolden executes a scenario and compares the journal and calls against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the journal doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's journal against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}

// SnapshotJSON renders the canonical golden form of a result.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Session:      result.Session,
		Trace:        result.Trace,
		Calls:        result.Calls,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}
