package ir

// Version constants for the layout IR and engine.
const (
	// IRVersion is the layout IR schema version.
	IRVersion = "1"

	// EngineVersion is the tetra engine version.
	EngineVersion = "0.1.0"
)
