package apperr

// Category groups error codes by the phase of a call that produced them.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryCodec         Category = "codec"
	CategoryDispatch      Category = "dispatch"
	CategoryRemote        Category = "remote"
)

// Predefined error codes (can be extended)
var (
	ErrorCodeUnsupportedMediaType  = NewErrorCode("unsupported_media_type", "Unsupported media type", 10, CategoryConfiguration)
	ErrorCodeUnsupportedBodyShape  = NewErrorCode("unsupported_body_shape", "Body shape is not supported by the content type", 20, CategoryConfiguration)
	ErrorCodeInvalidBaseURL        = NewErrorCode("invalid_base_url", "Invalid base url", 30, CategoryConfiguration)
	ErrorCodeMissingEndpoint       = NewErrorCode("missing_endpoint", "Endpoint is required", 40, CategoryConfiguration)
	ErrorCodeMissingMethod         = NewErrorCode("missing_method", "HTTP method is required", 50, CategoryConfiguration)
	ErrorCodeUnsupportedMethod     = NewErrorCode("unsupported_method", "HTTP method is not supported", 60, CategoryConfiguration)
	ErrorCodeInvalidConfig         = NewErrorCode("invalid_config", "Invalid client configuration", 70, CategoryConfiguration)
	ErrorCodeUnsupportedTargetType = NewErrorCode("unsupported_target_type", "Target type is not supported by the content type", 110, CategoryCodec)
	ErrorCodeConversionFailed      = NewErrorCode("conversion_failed", "Value could not be converted", 120, CategoryCodec)
	ErrorCodeInvalidSerializedBody = NewErrorCode("invalid_serialized_body_type", "Serialized body must be text or bytes", 130, CategoryCodec)
	ErrorCodeFailureDecode         = NewErrorCode("failure_decode", "Failure body could not be decoded", 140, CategoryCodec)
	ErrorCodeUnhandledStatus       = NewErrorCode("unhandled_status", "No handler registered for status", 210, CategoryDispatch)
	ErrorCodeHandlerTypeMismatch   = NewErrorCode("handler_type_mismatch", "Handler result has an unexpected type", 220, CategoryDispatch)
	ErrorCodeCallConsumed          = NewErrorCode("call_consumed", "Call has already been dispatched", 230, CategoryDispatch)
	ErrorCodeRemote                = NewErrorCode("remote_error", "Remote API returned an error", 300, CategoryRemote)
)

// ErrorCode describes a canonical error code.
// It carries a numeric ordering value and the category it belongs to.
type ErrorCode struct {
	code     string
	message  string
	value    int
	category Category
}

func NewErrorCode(code, message string, value int, category Category) *ErrorCode {
	return &ErrorCode{code: code, message: message, value: value, category: category}
}

func (ec *ErrorCode) Code() string       { return ec.code }
func (ec *ErrorCode) Message() string    { return ec.message }
func (ec *ErrorCode) Value() int         { return ec.value }
func (ec *ErrorCode) Category() Category { return ec.category }
