package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/world"
)

// End reasons recorded in the journal Detail field.
const (
	ReasonRelease   = "release"
	ReasonSwitch    = "switch"
	ReasonCancel    = "cancel"
	ReasonRetrigger = "retrigger"
)

// slot is the per-binding state of the active mode. The command instance is
// created on first activation and kept until the mode is replaced, so its
// timers survive between activations.
type slot struct {
	binding *Binding
	cmd     command.Command
	active  bool
}

// Controller turns key events and frame ticks into command lifecycle calls.
//
// Exactly one mode is active at a time. Key handling, Tick, SwitchMode and
// CancelAll must be called from the frame loop goroutine only; Enqueue is
// the one method safe to call from any goroutine.
//
// INVARIANTS:
//   - End is called at most once per successful Exec, and always before the
//     same slot executes again
//   - a mode switch ends every active command of the outgoing mode before
//     any binding of the incoming mode can fire
//   - queued input is applied before the tick's Update calls
type Controller struct {
	world  world.API
	modes  *Modes
	logger *slog.Logger
	seq    SeqSource
	queue  *inputQueue
	env    command.Env

	mode     *Mode
	previous string
	slots    []slot
	pending  *string

	// held maps every key currently down to whether its press was
	// consumed, so auto-repeat reports the same answer.
	held map[ir.KeyID]bool

	frame   int64
	journal []ir.Dispatch
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for dispatch diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithSeqSource sets the clock that stamps journal entries.
// Default: a new Clock starting at 0.
func WithSeqSource(s SeqSource) ControllerOption {
	return func(c *Controller) {
		c.seq = s
	}
}

// NewController creates a controller over modes and the world it drives.
// The initial mode of the table becomes active.
//
// Returns a *RuntimeError (UNKNOWN_MODE) if the initial mode was not built.
func NewController(modes *Modes, w world.API, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		world:  w,
		modes:  modes,
		logger: slog.Default(),
		seq:    NewClock(),
		queue:  newInputQueue(),
		held:   make(map[ir.KeyID]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.env = command.Env{World: w, Modes: c, Logger: c.logger}

	m, ok := modes.Get(modes.Initial)
	if !ok {
		return nil, NewUnknownModeError(modes.Initial)
	}
	c.install(m)
	return c, nil
}

// ActiveMode returns the name of the active mode.
func (c *Controller) ActiveMode() string {
	return c.mode.Name
}

// PreviousMode returns the mode active before the last switch, or "".
func (c *Controller) PreviousMode() string {
	return c.previous
}

// Frame returns the number of completed ticks.
func (c *Controller) Frame() int64 {
	return c.frame
}

// Held reports whether key is currently down.
func (c *Controller) Held(key ir.KeyID) bool {
	_, ok := c.held[key]
	return ok
}

// ActiveBindings returns the declared indexes of the bindings whose
// commands are running, in binding order.
func (c *Controller) ActiveBindings() []int {
	var out []int
	for i := range c.slots {
		if c.slots[i].active {
			out = append(out, c.slots[i].binding.Index)
		}
	}
	return out
}

// OnKeyDown handles a key press and reports whether the key was consumed:
// it fired a binding or is a toggle key of the active mode.
//
// A press of a key that is already down is auto-repeat and changes nothing.
// While the table is disabled or the world is not ready the key is only
// tracked.
func (c *Controller) OnKeyDown(key ir.KeyID) bool {
	if consumed, repeat := c.held[key]; repeat {
		return consumed
	}
	c.held[key] = false
	if !c.modes.Enabled || !c.world.IsReady() {
		return false
	}

	consumed := c.mode.HasToggle(key)
	if i := c.match(key); i >= 0 {
		consumed = true
		c.fire(i)
	}
	c.held[key] = consumed
	return consumed
}

// OnKeyUp handles a key release. Every active command whose trigger or
// toggle is key ends. Returns whether the matching press was consumed.
func (c *Controller) OnKeyUp(key ir.KeyID) bool {
	consumed := c.held[key]
	delete(c.held, key)

	for i := range c.slots {
		b := c.slots[i].binding.Spec
		if b.Trigger == key || (b.Gated() && b.Toggle == key) {
			c.end(i, ReasonRelease)
		}
	}
	return consumed
}

// Tick advances one frame: queued input first, then Update on every active
// continuous command in binding order.
func (c *Controller) Tick(dt time.Duration) {
	for {
		ev, ok := c.queue.TryDequeue()
		if !ok {
			break
		}
		c.apply(ev)
	}

	if c.modes.Enabled && c.world.IsReady() {
		for i := range c.slots {
			s := &c.slots[i]
			if s.active && s.cmd.Continuous() {
				s.cmd.Update(&c.env, dt)
			}
		}
	}
	c.frame++
}

// SwitchMode ends every active command and activates the named mode with
// fresh command instances. An empty name returns to the previous mode.
//
// Returns a *RuntimeError (UNKNOWN_MODE) and leaves the active mode
// untouched when the target does not exist.
func (c *Controller) SwitchMode(name string) error {
	target := name
	if target == "" {
		if c.previous == "" {
			return &RuntimeError{Code: ErrCodeUnknownMode, Message: "no previous mode to return to"}
		}
		target = c.previous
	}
	m, ok := c.modes.Get(target)
	if !ok {
		return NewUnknownModeError(target)
	}

	from := c.mode.Name
	c.endAll(ReasonSwitch)
	c.install(m)
	c.previous = from

	c.journal = append(c.journal, ir.Dispatch{
		Seq:          c.seq.Next(),
		Frame:        c.frame,
		Phase:        ir.PhaseSwitch,
		Mode:         m.Name,
		BindingIndex: -1,
		Slot:         -1,
		Detail:       from,
	})
	c.logger.Info("mode switched", "from", from, "to", m.Name)
	return nil
}

// RequestSwitch implements command.ModeSwitcher. The switch is applied as
// soon as the requesting Exec returns.
func (c *Controller) RequestSwitch(name string) {
	c.pending = &name
}

// CancelAll ends every active command, as on loss of focus, and forgets
// which keys are held.
func (c *Controller) CancelAll() {
	c.endAll(ReasonCancel)
	clear(c.held)
}

// Enqueue submits input for the next Tick. Safe from any goroutine.
// Returns false after Close.
func (c *Controller) Enqueue(ev InputEvent) bool {
	return c.queue.Enqueue(ev)
}

// Close stops accepting queued input. Already queued events are still
// applied by the next Tick.
func (c *Controller) Close() {
	c.queue.Close()
}

// Drain returns the journal recorded since the last Drain.
func (c *Controller) Drain() []ir.Dispatch {
	out := c.journal
	c.journal = nil
	return out
}

func (c *Controller) install(m *Mode) {
	c.mode = m
	c.slots = make([]slot, len(m.Bindings))
	for i := range m.Bindings {
		c.slots[i].binding = &m.Bindings[i]
	}
}

func (c *Controller) apply(ev InputEvent) {
	switch ev.Type {
	case EventKeyDown:
		c.OnKeyDown(ev.Key)
	case EventKeyUp:
		c.OnKeyUp(ev.Key)
	case EventCancel:
		c.CancelAll()
	case EventSwitch:
		if err := c.SwitchMode(ev.Mode); err != nil {
			c.logger.Warn("queued mode switch failed", "error", err)
		}
	default:
		c.logger.Warn("unknown input event", "type", int(ev.Type))
	}
}

// match returns the slot bound to key: toggle-gated bindings whose toggle
// is held first, then unconditional ones, each in binding order.
func (c *Controller) match(key ir.KeyID) int {
	for i := range c.slots {
		b := c.slots[i].binding.Spec
		if b.Gated() && b.Trigger == key && c.Held(b.Toggle) {
			return i
		}
	}
	for i := range c.slots {
		b := c.slots[i].binding.Spec
		if !b.Gated() && b.Trigger == key {
			return i
		}
	}
	return -1
}

func (c *Controller) fire(i int) {
	s := &c.slots[i]
	if s.active {
		c.end(i, ReasonRetrigger)
	}
	if s.cmd == nil {
		s.cmd = s.binding.Config.New()
	}

	if s.cmd.Exec(&c.env) {
		s.active = true
		c.record(ir.PhaseExec, i, "")
	} else {
		c.record(ir.PhaseNoop, i, "")
	}

	if c.pending != nil {
		name := *c.pending
		c.pending = nil
		if err := c.SwitchMode(name); err != nil {
			c.logger.Warn("mode switch failed", "error", err)
		}
	}
}

func (c *Controller) end(i int, reason string) {
	s := &c.slots[i]
	if !s.active {
		return
	}
	s.active = false
	s.cmd.End(&c.env)
	c.record(ir.PhaseEnd, i, reason)
}

func (c *Controller) endAll(reason string) {
	for i := range c.slots {
		c.end(i, reason)
	}
}

func (c *Controller) record(phase ir.Phase, i int, detail string) {
	s := &c.slots[i]
	target := -1
	if t, ok := s.cmd.(command.Targeter); ok && phase != ir.PhaseNoop {
		target = t.Target()
	}
	d := ir.Dispatch{
		Seq:          c.seq.Next(),
		Frame:        c.frame,
		Phase:        phase,
		Mode:         c.mode.Name,
		BindingIndex: s.binding.Index,
		BindingID:    s.binding.ID,
		Command:      s.binding.Spec.Command,
		Slot:         target,
		Detail:       detail,
	}
	c.journal = append(c.journal, d)
	c.logger.Debug("dispatch",
		"phase", string(phase),
		"mode", d.Mode,
		"binding", d.BindingIndex,
		"command", d.Command,
		"slot", d.Slot,
	)
}
