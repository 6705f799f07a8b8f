package ir

// Version constants for the mode table schema and engine.
const (
	// IRVersion is the mode table schema version.
	IRVersion = "1"

	// EngineVersion is the hotbar engine version.
	EngineVersion = "0.1.0"
)
