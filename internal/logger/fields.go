package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard field names used across the service.
const (
	FieldRequestID  = "request_id"
	FieldComponent  = "component"
	FieldUsuario    = "usuario"
	FieldDurationMs = "duration_ms"
	FieldStatus     = "status"
)
