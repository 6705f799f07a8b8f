package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/hotbar/internal/ir"
)

// CompileCUE compiles CUE source text. filename is used in error positions.
func CompileCUE(data []byte, filename string) (*ir.ModeTable, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	return CompileTable(v)
}

// Load compiles a configuration from disk.
//
// path may be a .cue or .toml file, or a directory whose CUE files are
// unified into one table.
func Load(path string) (*ir.ModeTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if info.IsDir() {
		return loadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return CompileCUE(data, path)
	case ".toml":
		return CompileTOML(data)
	default:
		return nil, fmt.Errorf("load %s: unsupported file type (want .cue or .toml)", path)
	}
}

// loadDir builds the CUE instance of a directory.
func loadDir(dir string) (*ir.ModeTable, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load %s: no CUE instances", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	return CompileTable(v)
}
