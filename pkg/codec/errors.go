package codec

// Errors
var (
	ErrSinkUnwritable  = &CodecError{"sink unwritable"}
	ErrInvalidLength   = &CodecError{"invalid segment length"}
	ErrTruncatedRecord = &CodecError{"truncated record"}
	ErrBadEndMarker    = &CodecError{"bad end marker"}
	ErrMalformedText   = &CodecError{"malformed text record"}
)

// CodecError represents a record encoding or decoding error
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}
