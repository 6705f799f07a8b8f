package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/testutil"
	"github.com/roach88/hotbar/internal/world"
)

const frame = 16 * time.Millisecond

var quiet = slog.New(slog.DiscardHandler)

// spyConfig builds commands that record their lifecycle calls into a shared
// log as "exec:name", "update:name" and "end:name".
type spyConfig struct {
	name       string
	continuous bool
	fail       bool
	log        *[]string
}

func (c spyConfig) Name() string { return "Spy" }

func (c spyConfig) New() command.Command { return &spyCmd{cfg: c} }

type spyCmd struct {
	cfg spyConfig
}

func (s *spyCmd) Name() string     { return "Spy" }
func (s *spyCmd) Continuous() bool { return s.cfg.continuous }

func (s *spyCmd) Exec(*command.Env) bool {
	*s.cfg.log = append(*s.cfg.log, "exec:"+s.cfg.name)
	return !s.cfg.fail
}

func (s *spyCmd) Update(*command.Env, time.Duration) {
	*s.cfg.log = append(*s.cfg.log, "update:"+s.cfg.name)
}

func (s *spyCmd) End(*command.Env) {
	*s.cfg.log = append(*s.cfg.log, "end:"+s.cfg.name)
}

func spyRegistry(log *[]string) *command.Registry {
	reg := command.DefaultRegistry()
	reg.MustRegister("Spy", func(p map[string]string) (command.Config, error) {
		return spyConfig{
			name:       p["name"],
			continuous: p["continuous"] == "true",
			fail:       p["fail"] == "true",
			log:        log,
		}, nil
	})
	return reg
}

// spy declares a Spy binding.
func spy(toggle, trigger ir.KeyID, name string, continuous bool) ir.BindingSpec {
	params := map[string]string{"name": name}
	if continuous {
		params["continuous"] = "true"
	}
	return ir.BindingSpec{Toggle: toggle, Trigger: trigger, Command: "Spy", Params: params}
}

func switchTo(toggle, trigger ir.KeyID, mode string) ir.BindingSpec {
	return ir.BindingSpec{Toggle: toggle, Trigger: trigger, Command: command.NameSwitchMode, Params: map[string]string{"ModeName": mode}}
}

func table(modes ...ir.ModeSpec) ir.ModeTable {
	return ir.ModeTable{Enabled: true, Modes: modes}
}

// newSpyController builds table with the spy registry over an empty Sim.
func newSpyController(t *testing.T, tbl ir.ModeTable) (*Controller, *world.Sim, *[]string) {
	t.Helper()
	log := &[]string{}
	modes, errs := BuildModes(tbl, spyRegistry(log), quiet)
	require.False(t, HasFatal(errs), "unexpected config errors: %v", errs)

	sim := world.NewSim(nil)
	c, err := NewController(modes, sim, WithLogger(quiet), WithSeqSource(testutil.NewDeterministicClock()))
	require.NoError(t, err)
	return c, sim, log
}

func phases(ds []ir.Dispatch) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d.Phase)
		if d.Detail != "" {
			out[i] += ":" + d.Detail
		}
	}
	return out
}
