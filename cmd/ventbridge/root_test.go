package main

import (
	"context"
	"testing"

	"github.com/airnode/ventbridge"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeForMapsKnownErrors(t *testing.T) {
	assert.Equal(t, exitOK, exitCodeFor(nil))
	assert.Equal(t, exitNotRegistered, exitCodeFor(ventbridge.ErrNotRegistered))
	assert.Equal(t, exitConnectTimeout, exitCodeFor(context.DeadlineExceeded))
	assert.Equal(t, exitRMIError, exitCodeFor(&ventbridge.RMIError{Code: ventbridge.RMIErrUnknownProperty}))
	assert.Equal(t, exitGeneric, exitCodeFor(assert.AnError))
}

func TestRequireHostFlagRejectsEmpty(t *testing.T) {
	hostFlag = ""
	err := requireHostFlag(nil)
	assert.ErrorIs(t, err, ventbridge.ErrIllegalArgument)

	hostFlag = "127.0.0.1:56747"
	assert.NoError(t, requireHostFlag(nil))
	hostFlag = ""
}
