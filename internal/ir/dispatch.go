package ir

// Phase names a step of a command activation as seen by the journal.
type Phase string

const (
	// PhaseExec is recorded when a binding's command starts.
	PhaseExec Phase = "exec"

	// PhaseNoop is recorded when a binding matched but its command found
	// nothing to act on. The slot stays idle.
	PhaseNoop Phase = "noop"

	// PhaseEnd is recorded when an active command is ended, whether by
	// key release, cancellation or a mode switch.
	PhaseEnd Phase = "end"

	// PhaseSwitch is recorded when the active mode changes.
	PhaseSwitch Phase = "switch"
)

// Dispatch is one journaled controller decision.
//
// Seq is assigned from the controller's logical clock and is the only
// ordering key. Frame counts completed ticks so a reader can tell which
// events landed in the same frame.
type Dispatch struct {
	Seq          int64  `json:"seq"`
	Frame        int64  `json:"frame"`
	Phase        Phase  `json:"phase"`
	Mode         string `json:"mode"`
	BindingIndex int    `json:"binding_index"`
	BindingID    string `json:"binding_id,omitempty"`
	Command      string `json:"command,omitempty"`

	// Slot is the inventory index the command resolved, or -1.
	Slot int `json:"slot"`

	// Detail carries phase specific context such as the reason for an
	// end ("release", "switch", "cancel") or the new mode name.
	Detail string `json:"detail,omitempty"`
}

// Session describes one recorded play session.
type Session struct {
	Token         string `json:"token"`
	TableHash     string `json:"table_hash"`
	InitialMode   string `json:"initial_mode"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}
