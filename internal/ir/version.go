package ir

// Version constants for the record schema and engine.
const (
	// RecordVersion is the persisted segment record schema version.
	RecordVersion = "1"

	// EngineVersion is the keepline engine version.
	EngineVersion = "0.1.0"
)
