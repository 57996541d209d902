package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComponentState_String verifies that ComponentState values produce
// the expected string representations for CLI output and JSON serialization.
func TestComponentState_String(t *testing.T) {
	tests := []struct {
		state    ComponentState
		expected string
	}{
		{StateReady, "ready"},
		{StateStale, "stale"},
		{StateAbsent, "absent"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

// TestComponentState_IsValid checks that only defined state values pass validation.
func TestComponentState_IsValid(t *testing.T) {
	assert.True(t, StateReady.IsValid())
	assert.True(t, StateStale.IsValid())
	assert.True(t, StateAbsent.IsValid())
	assert.False(t, ComponentState("invalid").IsValid())
	assert.False(t, ComponentState("").IsValid())
}

// TestParseComponentState verifies string-to-state conversion,
// including case normalization and error cases.
func TestParseComponentState(t *testing.T) {
	tests := []struct {
		input    string
		expected ComponentState
		hasError bool
	}{
		{"ready", StateReady, false},
		{"stale", StateStale, false},
		{"absent", StateAbsent, false},
		{"Ready", StateReady, false},  // case insensitive
		{"STALE", StateStale, false},  // case insensitive
		{"invalid", "", true},         // unknown value
		{"", "", true},                // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseComponentState(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestShimSpec_Validate covers the wrapper naming rules: alphanumeric
// plus hyphens, starting and ending with an alphanumeric character,
// and a mandatory target script.
func TestShimSpec_Validate(t *testing.T) {
	tests := []struct {
		name     string
		spec     ShimSpec
		hasError bool
	}{
		{"simple", ShimSpec{Name: "fetch", Target: "src/fetchMessages.py"}, false},
		{"hyphenated", ShimSpec{Name: "fetch-all", Target: "src/fetchMessages.py"}, false},
		{"single char", ShimSpec{Name: "v", Target: "src/viewChats.py"}, false},
		{"empty name", ShimSpec{Name: "", Target: "x.py"}, true},
		{"leading hyphen", ShimSpec{Name: "-fetch", Target: "x.py"}, true},
		{"trailing hyphen", ShimSpec{Name: "fetch-", Target: "x.py"}, true},
		{"path separator", ShimSpec{Name: "../fetch", Target: "x.py"}, true},
		{"underscore", ShimSpec{Name: "fetch_all", Target: "x.py"}, true},
		{"empty target", ShimSpec{Name: "fetch", Target: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestCLIError_ErrorAndUnwrap verifies the error message format and that
// errors.Is can see through the wrapper via Unwrap.
func TestCLIError_ErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("permission denied")

	wrapped := WrapCLIError(ExitShimFailed, "failed to write wrapper", underlying)
	assert.Equal(t, "failed to write wrapper: permission denied", wrapped.Error())
	assert.True(t, errors.Is(wrapped, underlying), "Unwrap should expose the underlying error")
	assert.Equal(t, ExitShimFailed, wrapped.Code)

	plain := NewCLIError(ExitPythonNotFound, "no python interpreter found")
	assert.Equal(t, "no python interpreter found", plain.Error())
	assert.Nil(t, plain.Unwrap())
}
