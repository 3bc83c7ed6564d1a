package ir

// Version constants for the schema description and generator output.
const (
	// SchemaVersion is the RecordDefinition hashing version.
	SchemaVersion = "1"

	// GeneratorVersion is stamped into generated file headers.
	GeneratorVersion = "0.1.0"
)
