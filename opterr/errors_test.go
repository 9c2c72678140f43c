package opterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetKind(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"domain", Domain("value %d out of range", 7), IsDomain},
		{"fit", Fit("singular matrix"), IsFit},
		{"configuration", Configuration("bad option %q", "x"), IsConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.predicate(tt.err))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestPredicatesAreExclusive(t *testing.T) {
	err := Domain("nope")
	assert.True(t, IsDomain(err))
	assert.False(t, IsFit(err))
	assert.False(t, IsConfiguration(err))

	assert.False(t, IsDomain(nil))
	assert.False(t, IsDomain(errors.New("plain")))
}

func TestWithOpAppearsInMessage(t *testing.T) {
	err := Fit("bad data").WithOp("surrogate.Fit")
	assert.Contains(t, err.Error(), "surrogate.Fit")
	assert.Contains(t, err.Error(), "bad data")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, KindFit, "model.Fit")

	assert.True(t, IsFit(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "underlying")
}

func TestErrorsAsExtractsTyped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Configuration("inner"))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, KindConfiguration, e.Kind)
	assert.True(t, IsConfiguration(wrapped))
}
