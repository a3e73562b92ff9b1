package errors

const (
	HttpInternalError      = "internal_error"
	HttpInvalidParamsError = "invalid_params"
	HttpUnknownMetricError = "unknown_metric"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
