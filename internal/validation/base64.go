package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// EncryptionKeySize is the decoded length of a token encryption key.
const EncryptionKeySize = 32

// Base64Key validates a standard base64 string decoding to EncryptionKeySize bytes.
var Base64Key = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	if len(key) != EncryptionKeySize {
		return validation.NewError("validation_key_size", "must decode to 32 bytes")
	}
	return nil
})
