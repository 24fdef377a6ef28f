package selfsigned

import "errors"

// ErrGenerationFailed is returned when key generation or self-signing fails.
// The failure is recoverable by retrying or falling back to a smaller key
// profile; no partial output is ever produced.
var ErrGenerationFailed = errors.New("self-signed certificate generation failed")
