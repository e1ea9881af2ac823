package daylog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"key=value", "key", "value", false},
		{" key = value ", "key", "value", false},
		{"key=value=with=equals", "key", "value=with=equals", false},
		{"noequals", "", "", true},
		{"=value", "", "", true},
		{"key=", "key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := parseKeyValue(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantKey, key)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestFmtErrorf(t *testing.T) {
	err := fmtErrorf("test error: %s", "details")
	assert.Error(t, err)
	assert.Equal(t, "daylog: test error: details", err.Error())

	// Already prefixed
	err = fmtErrorf("daylog: already prefixed")
	assert.Equal(t, "daylog: already prefixed", err.Error())

	// Wrapping is preserved
	err = fmtErrorf("outer: %w", ErrShutdown)
	assert.True(t, errors.Is(err, ErrShutdown))
}

func TestCombineErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	assert.Nil(t, combineErrors(nil, nil))
	assert.Equal(t, first, combineErrors(first, nil))
	assert.Equal(t, second, combineErrors(nil, second))

	combined := combineErrors(first, second)
	assert.Equal(t, "first; second", combined.Error())
	assert.True(t, errors.Is(combined, second))
}

func TestCombineConfigErrors(t *testing.T) {
	assert.Nil(t, combineConfigErrors(nil))

	single := fmtErrorf("one")
	assert.Equal(t, single, combineConfigErrors([]error{single}))

	err := combineConfigErrors([]error{fmtErrorf("one"), fmtErrorf("two")})
	assert.Equal(t, "daylog: multiple configuration errors:\n  1. one\n  2. two", err.Error())
}
