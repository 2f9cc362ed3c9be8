package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	base := stderrors.New("model file missing")
	err := New(base).
		Component("classifier").
		Category(CategoryModelLoad).
		Context("model_path", "model/waste.tflite").
		Build()

	var ee *EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "classifier", ee.Component)
	assert.Equal(t, CategoryModelLoad, ee.ErrorCategory())
	assert.Equal(t, "model/waste.tflite", ee.GetContext()["model_path"])
	assert.False(t, ee.Timestamp.IsZero())

	// The original error stays reachable through the chain.
	assert.ErrorIs(t, err, base)
	assert.Equal(t, base.Error(), err.Error())
}

func TestNewfFormatsMessage(t *testing.T) {
	t.Parallel()

	err := Newf("invalid image name %q", "../etc").
		Category(CategoryValidation).
		Build()
	assert.Contains(t, err.Error(), `"../etc"`)
}

func TestIsMatchesSentinelThroughWrap(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("disposal record insert failed")
	wrapped := fmt.Errorf("%w: database locked", sentinel)
	assert.True(t, Is(wrapped, sentinel))
	assert.False(t, Is(wrapped, NewStd("other")))
}

func TestEnhancedErrorIsByCategory(t *testing.T) {
	t.Parallel()

	a := Newf("one").Category(CategoryDatabase).Build()
	b := Newf("two").Category(CategoryDatabase).Build()
	c := Newf("three").Category(CategoryNetwork).Build()

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestGetContextNeverNil(t *testing.T) {
	t.Parallel()

	err := Newf("bare").Build()
	var ee *EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.NotNil(t, ee.GetContext())
}
