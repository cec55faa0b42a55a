package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	FieldRequestID     = "request_id"
	FieldSearchID      = "search_id"
	FieldApplicationID = "application_id"
	FieldMutationID    = "mutation_id"
	FieldComponent     = "component"
	FieldSource        = "source"
	FieldAction        = "action"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
