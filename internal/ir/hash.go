package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm change.
const (
	DomainBinding = "hotbar/binding/v1"
	DomainTable   = "hotbar/table/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// bindingObject is the canonical form of a binding inside a mode.
func bindingObject(mode string, b BindingSpec) map[string]any {
	obj := map[string]any{
		"mode":    mode,
		"trigger": string(b.Trigger),
		"command": b.Command,
	}
	if b.Gated() {
		obj["toggle"] = string(b.Toggle)
	}
	if len(b.Params) > 0 {
		obj["params"] = b.Params
	}
	return obj
}

// BindingID computes a stable identity for a binding. Two bindings with the
// same mode, keys, command and parameters share an ID regardless of their
// position, so trace records survive reordering of a config file.
func BindingID(mode string, b BindingSpec) (string, error) {
	canonical, err := MarshalCanonical(bindingObject(mode, b))
	if err != nil {
		return "", fmt.Errorf("BindingID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBinding, canonical), nil
}

// MustBindingID is like BindingID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBindingID(mode string, b BindingSpec) string {
	id, err := BindingID(mode, b)
	if err != nil {
		panic(err)
	}
	return id
}

// TableHash computes the identity of a whole mode table. Sessions record it
// so a trace can be matched to the configuration that produced it.
func TableHash(t ModeTable) (string, error) {
	modes := make([]any, len(t.Modes))
	for i, m := range t.Modes {
		toggles := make([]any, len(m.ToggleKeys))
		for j, k := range m.ToggleKeys {
			toggles[j] = string(k)
		}
		bindings := make([]any, len(m.Bindings))
		for j, b := range m.Bindings {
			bindings[j] = bindingObject(m.Name, b)
		}
		modes[i] = map[string]any{
			"name":        m.Name,
			"toggle_keys": toggles,
			"bindings":    bindings,
		}
	}

	obj := map[string]any{
		"enabled":    t.Enabled,
		"initial":    t.InitialMode(),
		"modes":      modes,
		"ir_version": IRVersion,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("TableHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}
