package pkg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandDigits(t *testing.T) {
	code, err := RandDigits(6)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestRandBase36(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := RandBase36(6)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{6}$`), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}
