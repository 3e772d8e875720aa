package audio

// Common error codes
const (
	ErrCodeDecoding      = "DECODING_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeRateMismatch  = "SAMPLE_RATE_MISMATCH"
	ErrCodeBinaryMissing = "FFMPEG_NOT_FOUND"
)

// DecodeError represents a failure of the external decode step
type DecodeError struct {
	Input   string `json:"input"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detail carries diagnostic output captured from the decoder process
	Detail string `json:"detail,omitempty"`
	Cause  error  `json:"-"`
}

func (e *DecodeError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Detail != "" {
		msg = msg + "\n" + e.Detail
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new decode error
func NewDecodeError(input, code, message string, cause error) *DecodeError {
	return &DecodeError{
		Input:   input,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewDecodeErrorWithDetail creates a decode error carrying captured
// diagnostic output
func NewDecodeErrorWithDetail(input, code, message, detail string, cause error) *DecodeError {
	return &DecodeError{
		Input:   input,
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}
