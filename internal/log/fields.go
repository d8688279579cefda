package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldFilter     = "filter"
	FieldSequence   = "sequence"
	FieldHeader     = "header"
	FieldCategory   = "category"
	FieldCost       = "cost"
	FieldDate       = "date"
	FieldCount      = "count"
	FieldTotalCents = "total_cents"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAPI     = "api_client"
	ComponentSession = "session"
	ComponentReport  = "report"
	ComponentEvents  = "events"
	ComponentExport  = "export"
	ComponentWS      = "websocket"
)

// Operations defines standard operation names.
const (
	OpFetch    = "fetch"
	OpDerive   = "derive"
	OpSubmit   = "submit"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
