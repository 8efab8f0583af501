package ir

// Version constants for the schema IR and the tool.
const (
	// IRVersion is the schema IR version. It is part of the canonical
	// encoding, so changing it changes every SchemaHash.
	IRVersion = "1"

	// ToolVersion is the valsem tool version.
	ToolVersion = "0.1.0"
)
