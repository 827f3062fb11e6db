package bcn

import "errors"

// ErrorCode classifies errors returned by the codec API.
type ErrorCode uint32

const (
	// Success means no error.
	Success ErrorCode = 0

	// ErrBadParam is returned for invalid arguments (dimensions, buffers, tuning).
	ErrBadParam ErrorCode = 1

	// ErrUnsupportedFormat is returned when a format or option combination has no codec.
	ErrUnsupportedFormat ErrorCode = 2

	// ErrBadDataSize is returned when a compressed buffer does not match the image geometry.
	ErrBadDataSize ErrorCode = 3

	// ErrBadBlockType is returned when a BC7 block carries the reserved mode tag.
	ErrBadBlockType ErrorCode = 4

	// ErrBadContainer is returned for malformed DDS data.
	ErrBadContainer ErrorCode = 5

	// ErrCanceled is returned when a context is done before all tiles were encoded.
	ErrCanceled ErrorCode = 6
)

// ErrorString returns the symbolic name for a code.
//
// For unknown codes, it returns "".
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "BCN_SUCCESS"
	case ErrBadParam:
		return "BCN_ERR_BAD_PARAM"
	case ErrUnsupportedFormat:
		return "BCN_ERR_UNSUPPORTED_FORMAT"
	case ErrBadDataSize:
		return "BCN_ERR_BAD_DATA_SIZE"
	case ErrBadBlockType:
		return "BCN_ERR_BAD_BLOCK_TYPE"
	case ErrBadContainer:
		return "BCN_ERR_BAD_CONTAINER"
	case ErrCanceled:
		return "BCN_ERR_CANCELED"
	default:
		return ""
	}
}

// Error is a typed error that carries an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "bcn: " + s
	}
	return "bcn: error"
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorCodeOf returns the code carried by err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
