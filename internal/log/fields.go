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
	FieldUserID     = "user_id"
	FieldTripID     = "trip_id"
	FieldExpenseID  = "expense_id"
	FieldAmount     = "amount"
	FieldCurrency   = "currency"
	FieldCategory   = "category"
	FieldIntent     = "intent"
	FieldQueryType  = "query_type"
	FieldTranscript = "transcript"
	FieldSheetsRef  = "sheets_ref"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentAI      = "ai"
	ComponentVoice   = "voice"
	ComponentSummary = "summary"
	ComponentExpense = "expense"
	ComponentTrace   = "trace"
)

// Operations defines standard operation names.
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpDelete     = "delete"
	OpList       = "list"
	OpAppend     = "append"
	OpSync       = "sync"
	OpTranscribe = "transcribe"
	OpComplete   = "complete"
	OpSynthesize = "synthesize"
	OpParse      = "parse"
	OpResolve    = "resolve"
	OpExecute    = "execute"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
