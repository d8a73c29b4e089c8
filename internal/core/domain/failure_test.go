package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFailureClassification tests the two-way error classification.
func TestFailureClassification(t *testing.T) {
	system := &SystemError{Message: "unreachable"}
	parser := &ParserError{Message: "choked"}

	assert.True(t, IsSystemError(system))
	assert.False(t, IsParserError(system))
	assert.True(t, IsParserError(parser))
	assert.False(t, IsSystemError(parser))

	assert.False(t, IsSystemError(errors.New("plain")))
	assert.False(t, IsParserError(nil))
}

// TestFailureClassification_Wrapped tests classification through
// wrapping.
func TestFailureClassification_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("resolving: %w", &ParserError{Message: "choked"})

	assert.True(t, IsParserError(wrapped))
	assert.False(t, IsSystemError(wrapped))
}

// TestFailureMessages tests error rendering with and without causes.
func TestFailureMessages(t *testing.T) {
	cause := errors.New("connection refused")

	system := &SystemError{Message: "dialling", Err: cause}
	assert.Equal(t, "analyzer system failure: dialling: connection refused", system.Error())
	assert.ErrorIs(t, system, cause)

	parser := &ParserError{Message: "timed out"}
	assert.Equal(t, "analyzer parser failure: timed out", parser.Error())
	assert.NoError(t, errors.Unwrap(parser))
}

// TestInvariantError tests the invariant error rendering.
func TestInvariantError(t *testing.T) {
	err := InvariantError{Message: "broken"}
	assert.Equal(t, "invariant violation: broken", err.Error())
}
