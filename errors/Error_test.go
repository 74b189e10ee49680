package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	err := New(ERR_TX_DECODE, "could not decode %s", "deadbeef")
	require.NotNil(t, err)
	assert.Equal(t, ERR_TX_DECODE, err.Code())
	assert.Equal(t, "could not decode deadbeef", err.Message())
	assert.Nil(t, err.WrappedErr())
}

func TestNewErrorWrapsLastParam(t *testing.T) {
	inner := fmt.Errorf("broken pipe")
	err := New(ERR_SERVICE_ERROR, "relay failed", inner)
	require.NotNil(t, err.WrappedErr())
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestIsMatchesOnCode(t *testing.T) {
	err := NewTxAlreadyCommittedError("tx %s already in chain state", "aa")
	assert.True(t, Is(err, ErrTxAlreadyCommitted))
	assert.False(t, Is(err, ErrTxAlreadyPending))
}

func TestIsMatchesWrappedCode(t *testing.T) {
	inner := NewMissingPriorOutputError("input 3")
	outer := New(ERR_WORKFLOW_ABORTED, "commit stage failed", inner)

	assert.True(t, Is(outer, ErrWorkflowAborted))
	assert.True(t, Is(outer, ErrMissingPriorOutput))
}

func TestAs(t *testing.T) {
	err := NewAdmissionRejectedError("code %d: %s", 64, "dust")

	var e *Error
	require.True(t, As(err, &e))
	assert.Equal(t, ERR_ADMISSION_REJECTED, e.Code())
	assert.Contains(t, e.Message(), "dust")
}

func TestNilReceiverSafe(t *testing.T) {
	var err *Error
	assert.Equal(t, "<nil>", err.Error())
	assert.Equal(t, ERR_UNKNOWN, err.Code())
	assert.False(t, err.Is(ErrUnknown))
}

func TestUnknownCode(t *testing.T) {
	err := New(ERR(9999), "whatever")
	assert.Equal(t, "invalid error code", err.Message())
}
