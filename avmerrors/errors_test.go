package avmerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorParts(t *testing.T) {
	wrapped := fmt.Errorf("%w: slot 3", ErrStaticCallViolation)
	require.Equal(t, "H3", GetErrorCode(wrapped))
	require.Equal(t, "StaticCallViolation", GetErrorName(wrapped))
	require.Equal(t, "No Error", GetErrorName(nil))
	require.Equal(t, "", GetErrorCode(fmt.Errorf("plain")))
}

func TestIsExceptionalHalt(t *testing.T) {
	require.True(t, IsExceptionalHalt(fmt.Errorf("%w: need 9", ErrOutOfGas)))
	require.True(t, IsExceptionalHalt(ErrCallDepthExceeded))
	require.True(t, IsExceptionalHalt(fmt.Errorf("%w: 2000000 words", ErrSliceTooLarge)))
	require.False(t, IsExceptionalHalt(fmt.Errorf("%w: leveldb closed", ErrWorldStateIO)))
	require.False(t, IsExceptionalHalt(fmt.Errorf("unrelated")))
	require.False(t, IsExceptionalHalt(nil))
}
