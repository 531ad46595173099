package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	e := New(ErrorTypeOutput, "write json", errors.New("disk full"))
	assert.Equal(t, "output error: write json: disk full", e.Error())

	bare := New(ErrorTypeConfig, "bad value", nil)
	assert.Equal(t, "config error: bad value", bare.Error())
}

func TestTypeOfThroughWrapping(t *testing.T) {
	cause := errors.New("target closed")
	wrapped := fmt.Errorf("round 4: %w", Surface("scroll", cause))

	assert.Equal(t, ErrorTypeSurface, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeSurface))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, ErrorTypeUnknown, TypeOf(cause))
	assert.False(t, Is(nil, ErrorTypeUnknown))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"login timeout", LoginTimeout(nil), 2},
		{"no results", fmt.Errorf("search: %w", NoResults(nil)), 3},
		{"surface", Surface("navigate", errors.New("x")), 4},
		{"config", New(ErrorTypeConfig, "invalid", nil), 1},
		{"untyped", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeSurface))
	assert.False(t, IsRetryable(ErrorTypeLoginTimeout))
	assert.False(t, IsRetryable(ErrorTypeNoResults))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}
