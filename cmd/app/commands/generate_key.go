package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// RunGenerateKey generates a cryptographically secure 32-byte encryption key and
// prints it as environment variable configuration. The key is the root material
// for field encryption and audit log signing; both keys are derived from it via
// HKDF. Key material is zeroed from memory after encoding.
//
// Security: For production, prefer storing the key in a secrets manager or
// wrapping it with a KMS (ENCRYPTION_KEY_KMS_URI and ENCRYPTION_KEY_CIPHERTEXT)
// instead of a plaintext environment variable.
func RunGenerateKey(writer io.Writer) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	encoded := hex.EncodeToString(key)

	_, _ = fmt.Fprintln(writer, "# Encryption Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", encoded)

	// Zero out the key from memory for security
	for i := range key {
		key[i] = 0
	}

	return nil
}
