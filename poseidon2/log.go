package poseidon2

import (
	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// SetLogger sets the logger used by the package. Logging is disabled by default.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "poseidon2").Logger()
}
