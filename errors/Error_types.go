package errors

var (
	ErrUnknown              = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument      = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrNotFound             = New(ERR_NOT_FOUND, "not found")
	ErrProcessing           = New(ERR_PROCESSING, "error processing")
	ErrConfiguration        = New(ERR_CONFIGURATION, "configuration error")
	ErrError                = New(ERR_ERROR, "generic error")
	ErrServiceError         = New(ERR_SERVICE_ERROR, "service error")
	ErrStorageError         = New(ERR_STORAGE_ERROR, "storage error")
	ErrInvalidFormat        = New(ERR_INVALID_FORMAT, "invalid format")
	ErrTxDecode             = New(ERR_TX_DECODE, "tx decode failed")
	ErrTxInvalid            = New(ERR_TX_INVALID, "tx invalid")
	ErrInvalidDestination   = New(ERR_INVALID_DESTINATION, "invalid destination")
	ErrDuplicateDestination = New(ERR_DUPLICATE_DESTINATION, "duplicate destination")
	ErrScriptMismatch       = New(ERR_SCRIPT_MISMATCH, "previous output script mismatch")
	ErrMissingPriorOutput   = New(ERR_MISSING_PRIOR_OUTPUT, "missing prior output")
	ErrIncompleteSignature  = New(ERR_INCOMPLETE_SIGNATURE, "incomplete signature")
	ErrTxAlreadyPending     = New(ERR_TX_ALREADY_PENDING, "tx already pending")
	ErrTxAlreadyCommitted   = New(ERR_TX_ALREADY_COMMITTED, "tx already committed")
	ErrAdmissionRejected    = New(ERR_ADMISSION_REJECTED, "admission rejected")
	ErrWorkflowAborted      = New(ERR_WORKFLOW_ABORTED, "workflow aborted")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewNotFoundError(message string, params ...interface{}) error {
	return New(ERR_NOT_FOUND, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewServiceError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_ERROR, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewInvalidFormatError(message string, params ...interface{}) error {
	return New(ERR_INVALID_FORMAT, message, params...)
}
func NewTxDecodeError(message string, params ...interface{}) error {
	return New(ERR_TX_DECODE, message, params...)
}
func NewTxInvalidError(message string, params ...interface{}) error {
	return New(ERR_TX_INVALID, message, params...)
}
func NewInvalidDestinationError(message string, params ...interface{}) error {
	return New(ERR_INVALID_DESTINATION, message, params...)
}
func NewDuplicateDestinationError(message string, params ...interface{}) error {
	return New(ERR_DUPLICATE_DESTINATION, message, params...)
}
func NewScriptMismatchError(message string, params ...interface{}) error {
	return New(ERR_SCRIPT_MISMATCH, message, params...)
}
func NewMissingPriorOutputError(message string, params ...interface{}) error {
	return New(ERR_MISSING_PRIOR_OUTPUT, message, params...)
}
func NewIncompleteSignatureError(message string, params ...interface{}) error {
	return New(ERR_INCOMPLETE_SIGNATURE, message, params...)
}
func NewTxAlreadyPendingError(message string, params ...interface{}) error {
	return New(ERR_TX_ALREADY_PENDING, message, params...)
}
func NewTxAlreadyCommittedError(message string, params ...interface{}) error {
	return New(ERR_TX_ALREADY_COMMITTED, message, params...)
}
func NewAdmissionRejectedError(message string, params ...interface{}) error {
	return New(ERR_ADMISSION_REJECTED, message, params...)
}
func NewWorkflowAbortedError(message string, params ...interface{}) error {
	return New(ERR_WORKFLOW_ABORTED, message, params...)
}
