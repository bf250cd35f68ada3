package formats

import "errors"

// Room interchange errors.
var (
	// ErrMalformedRecord reports a structural line with fewer fields than its marker requires.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrIndexOutOfRange reports a parallel array shorter than the array it is zipped against.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrSourceUnavailable reports a missing file or asset. Codecs never return it;
	// the I/O layers that feed them do.
	ErrSourceUnavailable = errors.New("source unavailable")
)
