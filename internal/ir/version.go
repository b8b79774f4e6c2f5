package ir

// Version constants for the request descriptor format and engine.
const (
	// SpecVersion is the QuerySpec wire version, mixed into request keys.
	SpecVersion = "1"

	// EngineVersion is the gridq engine version.
	EngineVersion = "0.1.0"
)
