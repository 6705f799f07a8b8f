package compiler

import (
	_ "embed"

	"github.com/roach88/hotbar/internal/ir"
)

//go:embed defaults.cue
var defaultsCUE []byte

// DefaultsSource returns the CUE text of the built-in table.
func DefaultsSource() []byte {
	return defaultsCUE
}

// Defaults compiles the built-in table: a Default mode whose start button
// switches to Mining, and a Mining mode with pickaxe, weapon, staircase and
// food bindings plus a Back+Y staircase craft.
func Defaults() (*ir.ModeTable, error) {
	return CompileCUE(defaultsCUE, "defaults.cue")
}
