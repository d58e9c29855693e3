package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldWorkspace    = "workspace_id"
	FieldYear         = "year"
	FieldMonth        = "month"
	FieldCurrency     = "currency"
	FieldAmountMinor  = "amount_minor"
	FieldDefinitionID = "definition_id"
	FieldBudgetID     = "budget_id"
	FieldDimension    = "dimension"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAggregate = "aggregate"
	ComponentSchedule  = "schedule"
	ComponentBudget    = "budget"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentExport    = "export"
)

// Operations defines standard operation names
const (
	OpSummarize = "summarize"
	OpTopN      = "top_n"
	OpBalance   = "balance"
	OpDueScan   = "due_scan"
	OpExport    = "export"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
