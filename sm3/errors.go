package sm3

import "fmt"

// InvalidHashLengthError represents an error when a digest handed to
// ImportDigest is not exactly Size bytes.
type InvalidHashLengthError int

// Error returns the error message for InvalidHashLengthError.
func (e InvalidHashLengthError) Error() string {
	return fmt.Sprintf("sm3: invalid hash length %d, digest must be %d bytes", int(e), Size)
}
