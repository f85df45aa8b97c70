package sm4

import "fmt"

// KeySizeError represents an error when the SM4 key size is invalid.
// SM4 keys must be exactly 16 bytes (128 bits).
type KeySizeError int

// Error returns the error message for KeySizeError.
func (k KeySizeError) Error() string {
	return fmt.Sprintf("sm4: invalid key size %d, key must be 16 bytes", int(k))
}
