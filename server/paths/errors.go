package paths

import "github.com/gear6io/glacier/pkg/errors"

// Path-specific error codes
var (
	ErrMalformedEscapeSequence = errors.MustNewCode("paths.malformed_escape_sequence")
)
