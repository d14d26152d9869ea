package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOption(t *testing.T) {
	for _, o := range Options() {
		parsed, err := ParseOption(string(o))
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}

	for _, tag := range []string{"Funday", "", "MON", " mon", "monday"} {
		_, err := ParseOption(tag)
		assert.ErrorIs(t, err, ErrInvalidOption, "tag %q", tag)
	}
}

func TestOptionsOrder(t *testing.T) {
	assert.Equal(t, []Option{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}, Options())

	// callers get their own copy
	opts := Options()
	opts[0] = Sunday
	assert.Equal(t, Monday, Options()[0])
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "Monday", Monday.Label())
	assert.Equal(t, "Sunday", Sunday.Label())
	assert.Equal(t, "xyz", Option("xyz").Label())
}
