package harness

import (
	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/world"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step applied and all assertions match.
	Pass bool `json:"pass"`

	// Session is the token the journal was recorded under.
	Session string `json:"session"`

	// Trace contains every journal entry in seq order.
	Trace []ir.Dispatch `json:"trace"`

	// Calls is the world's call log.
	Calls []world.Call `json:"calls"`

	// Messages are the in-game messages shown.
	Messages []string `json:"messages,omitempty"`

	// ActiveMode is the mode active after the last step.
	ActiveMode string `json:"active_mode"`

	// ConfigErrors holds the codes of problems found while loading the
	// table. Dropped bindings do not stop the scenario.
	ConfigErrors []string `json:"config_errors,omitempty"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(session string) *Result {
	return &Result{
		Pass:    true,
		Session: session,
		Trace:   []ir.Dispatch{},
		Calls:   []world.Call{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
