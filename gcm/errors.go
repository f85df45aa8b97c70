package gcm

import "fmt"

// InvalidTagLengthError represents an error when the caller requests an
// authentication tag longer than the GHASH block size.
type InvalidTagLengthError int

// Error returns the error message for InvalidTagLengthError.
func (e InvalidTagLengthError) Error() string {
	return fmt.Sprintf("gcm: invalid tag length %d, must be in [0, 16]", int(e))
}

// AuthenticationError indicates that Open's recomputed tag did not match the
// tag supplied by the caller. No plaintext is released when this occurs.
type AuthenticationError struct{}

// Error returns the error message for AuthenticationError.
func (AuthenticationError) Error() string {
	return "gcm: message authentication failed"
}
