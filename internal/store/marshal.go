package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/hotbar/internal/ir"
)

// marshalTable converts a ModeTable to JSON TEXT for storage.
// The table hash, not this text, identifies the configuration.
func marshalTable(t ir.ModeTable) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		return "", fmt.Errorf("marshal mode table: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalTable parses JSON TEXT to a ModeTable.
func unmarshalTable(data string) (ir.ModeTable, error) {
	var t ir.ModeTable
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return ir.ModeTable{}, fmt.Errorf("unmarshal mode table: %w", err)
	}
	return t, nil
}
