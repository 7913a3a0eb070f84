package log

// Canonical field names.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldResumeID  = "resume_id"
	FieldFile      = "file"
	FieldOrigin    = "origin"
	FieldMimeType  = "mime_type"
	FieldSize      = "size_bytes"
	FieldPercent   = "percent"
	FieldReason    = "reason"
	FieldStatus    = "status"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
	FieldEndpoint  = "endpoint"
)
