package logging

// Field names used across the pipeline so log output stays greppable.
const (
	FieldFile        = "file_path"
	FieldFormat      = "format"
	FieldFingerprint = "fingerprint"
	FieldSession     = "session_id"
	FieldLine        = "line"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldDropped     = "dropped"
	FieldBackend     = "backend"
	FieldComponent   = "component"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatus      = "status"
)
