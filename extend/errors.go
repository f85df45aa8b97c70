package extend

import "fmt"

// InvalidDigestLengthError represents an error when a digest handed to
// Forge is not exactly sm3.Size bytes.
type InvalidDigestLengthError int

// Error returns the error message for InvalidDigestLengthError.
func (e InvalidDigestLengthError) Error() string {
	return fmt.Sprintf("extend: invalid digest length %d, must be 32 bytes", int(e))
}
