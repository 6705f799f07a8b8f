package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/hotbar/internal/compiler"
	"github.com/roach88/hotbar/internal/ir"
)

// LoadError represents an error that occurred while loading a mode table.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Line    int       // TOML line if available
}

func (e *LoadError) Error() string {
	return e.Code + ": " + e.Detail()
}

// Detail is the message prefixed with its source position, if any.
func (e *LoadError) Detail() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	default:
		return e.Message
	}
}

// Error code constants shared by all CLI commands. Table problems found by
// the compiler's validator keep their own E1xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // Directory without CUE files
	ErrCodeLoadFailed  = "E004" // CUE or TOML failed to compile
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeUnsupported = "E006" // Unknown file type
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Database error
)

// LoadTable loads the mode table at path, or the built-in table when path
// is empty.
func LoadTable(path string) (*ir.ModeTable, error) {
	if path == "" {
		t, err := compiler.Defaults()
		if err != nil {
			return nil, convertCompileError(err)
		}
		return t, nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config: %v", err)}
	}

	if info.IsDir() {
		files, err := FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	} else {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".cue", ".toml":
		default:
			return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported config file %s (want .cue or .toml)", path)}
		}
	}

	t, err := compiler.Load(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return t, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		msg := compileErr.Message
		if compileErr.Field != "" {
			msg = compileErr.Field + ": " + msg
		}
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: msg,
			Pos:     compileErr.Pos,
			Line:    compileErr.Line,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// loadErrorParts splits err into a code and message for output.
func loadErrorParts(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Detail()
	}
	return ErrCodeGeneric, err.Error()
}
