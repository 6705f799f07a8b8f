package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hotbar/internal/world"
)

// Scenario defines a dispatch test scenario.
// Scenarios drive a controller over a simulated world with a scripted
// sequence of key presses and frames, then assert on the resulting journal,
// the world's call log and the final mode.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is an optional fixed session token for deterministic tests.
	// If empty, defaults to testutil.DefaultSessionToken.
	Session string `yaml:"session,omitempty"`

	// Config is an inline CUE mode table. ConfigTOML is the same in TOML.
	// ConfigFile names a .cue or .toml file relative to the scenario.
	// At most one may be set; with none the built-in table is used.
	Config     string `yaml:"config,omitempty"`
	ConfigTOML string `yaml:"config_toml,omitempty"`
	ConfigFile string `yaml:"config_file,omitempty"`

	// World describes the simulated player at the start.
	World WorldSpec `yaml:"world"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final journal, calls and mode.
	Assertions []Assertion `yaml:"assertions"`
}

// WorldSpec is the starting state of the simulated world.
type WorldSpec struct {
	// Inventory lists slots in order. A null entry is an empty slot.
	Inventory []*ItemSpec `yaml:"inventory"`

	// Stamina overrides world.DefaultStamina when non-zero.
	Stamina float64 `yaml:"stamina,omitempty"`

	// Recipes lists learned recipes by name.
	Recipes []string `yaml:"recipes,omitempty"`

	// NotReady starts the world refusing input.
	NotReady bool `yaml:"not_ready,omitempty"`
}

// ItemSpec is one inventory slot.
type ItemSpec struct {
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"`
	Tool         string `yaml:"tool,omitempty"`
	Edibility    int    `yaml:"edibility,omitempty"`
	Quality      int    `yaml:"quality,omitempty"`
	UpgradeLevel int    `yaml:"upgrade_level,omitempty"`
	Price        int    `yaml:"price,omitempty"`
	Stack        int    `yaml:"stack,omitempty"`
	MaxStack     int    `yaml:"max_stack,omitempty"`
	Placeable    bool   `yaml:"placeable,omitempty"`
}

// Item builds the world item for this slot. Objects default to inedible.
func (s ItemSpec) Item() *world.Item {
	it := &world.Item{
		Name:         s.Name,
		Kind:         world.Kind(s.Kind),
		Tool:         world.ToolClass(s.Tool),
		Edibility:    s.Edibility,
		Quality:      s.Quality,
		UpgradeLevel: s.UpgradeLevel,
		Price:        s.Price,
		Stack:        s.Stack,
		MaxStack:     s.MaxStack,
		Placeable:    s.Placeable,
	}
	if it.Kind == world.KindObject && s.Edibility == 0 {
		it.Edibility = world.Inedible
	}
	return it
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	// Down and Up press and release a key.
	Down string `yaml:"down,omitempty"`
	Up   string `yaml:"up,omitempty"`

	// Tick runs this many frames of DT each (default DefaultFrame). The
	// world advances by DT before every frame.
	Tick int    `yaml:"tick,omitempty"`
	DT   string `yaml:"dt,omitempty"`

	// Switch changes mode directly. An empty string returns to the
	// previous mode.
	Switch *string `yaml:"switch,omitempty"`

	// Cancel ends every active command.
	Cancel bool `yaml:"cancel,omitempty"`

	// Advance moves world time forward without a frame.
	Advance string `yaml:"advance,omitempty"`
}

// DefaultFrame is the frame length used when a tick step names none.
const DefaultFrame = 16 * time.Millisecond

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "call_contains": a world call with matching op, item, slot and arg
	// - "call_order": ops appear in order
	// - "call_count": op appears exactly N times
	// - "dispatch_count": journal entries matching phase/command/mode
	// - "active_mode": the mode active at the end
	// - "message_contains": an in-game message was shown
	// - "config_error": the table produced a problem with this code
	Type string `yaml:"type"`

	Op   string   `yaml:"op,omitempty"`
	Ops  []string `yaml:"ops,omitempty"`
	Item string   `yaml:"item,omitempty"`
	Slot *int     `yaml:"slot,omitempty"`
	Arg  string   `yaml:"arg,omitempty"`

	Phase   string `yaml:"phase,omitempty"`
	Command string `yaml:"command,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
	Message string `yaml:"message,omitempty"`
	Code    string `yaml:"code,omitempty"`

	// Count is the expected number of occurrences (call_count, dispatch_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCallContains    = "call_contains"
	AssertCallOrder       = "call_order"
	AssertCallCount       = "call_count"
	AssertDispatchCount   = "dispatch_count"
	AssertActiveMode      = "active_mode"
	AssertMessageContains = "message_contains"
	AssertConfigError     = "config_error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative config_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving config_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ConfigFile != "" && !filepath.IsAbs(scenario.ConfigFile) && basePath != "" {
		scenario.ConfigFile = filepath.Join(basePath, scenario.ConfigFile)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and step/assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	configs := 0
	for _, c := range []string{s.Config, s.ConfigTOML, s.ConfigFile} {
		if c != "" {
			configs++
		}
	}
	if configs > 1 {
		return fmt.Errorf("only one of config, config_toml and config_file may be set")
	}

	for i, it := range s.World.Inventory {
		if it != nil && it.Name == "" {
			return fmt.Errorf("world.inventory[%d]: name is required", i)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if err := validateStep(step, i); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one action is set and durations parse.
func validateStep(s Step, index int) error {
	set := 0
	if s.Down != "" {
		set++
	}
	if s.Up != "" {
		set++
	}
	if s.Tick != 0 {
		set++
	}
	if s.Switch != nil {
		set++
	}
	if s.Cancel {
		set++
	}
	if s.Advance != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of down, up, tick, switch, cancel or advance is required", index)
	}

	if s.Tick < 0 {
		return fmt.Errorf("steps[%d]: tick must be positive", index)
	}
	if s.DT != "" {
		if s.Tick == 0 {
			return fmt.Errorf("steps[%d]: dt is only valid with tick", index)
		}
		if _, err := time.ParseDuration(s.DT); err != nil {
			return fmt.Errorf("steps[%d]: dt: %w", index, err)
		}
	}
	if s.Advance != "" {
		if _, err := time.ParseDuration(s.Advance); err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion.
func validateAssertion(a Assertion, index int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCallContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for call_contains", index)
		}
	case AssertCallOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for call_order", index)
		}
	case AssertCallCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
	case AssertDispatchCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for dispatch_count", index)
		}
	case AssertActiveMode:
		if a.Mode == "" {
			return fmt.Errorf("assertions[%d]: mode is required for active_mode", index)
		}
	case AssertMessageContains:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for message_contains", index)
		}
	case AssertConfigError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for config_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
