package main

import (
	"bytes"
	"testing"

	"github.com/colorfulnotion/avm/avm"
	"github.com/colorfulnotion/avm/common"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestDisasmCommand(t *testing.T) {
	code := avm.NewAssembler().
		Emit(avm.SET_8, 0, 1, uint64(avm.TagU32), 0).
		Emit(avm.RETURN, 0, 1, 1).MustBytes()

	out, err := execute(t, "disasm", "--bytecode", common.Bytes2Hex(code))
	require.NoError(t, err)
	require.Contains(t, out, "SET_8")
	require.Contains(t, out, "RETURN")
}

func TestRunCommand(t *testing.T) {
	// return calldata[0] + calldata[1]
	code := avm.NewAssembler().
		Emit(avm.SET_8, 0, 1, uint64(avm.TagU32), 2).
		Emit(avm.SET_8, 0, 2, uint64(avm.TagU32), 0).
		Emit(avm.CALLDATACOPY, 0, 1, 2, 10).
		Emit(avm.ADD_8, 0, 10, 11, 12).
		Emit(avm.SET_8, 0, 3, uint64(avm.TagU32), 1).
		Emit(avm.RETURN, 0, 3, 12).MustBytes()

	out, err := execute(t, "run", "--bytecode", common.Bytes2Hex(code), "--calldata", "3,4", "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, out, "status:   success")
	require.Contains(t, out, "field(7)")
}

func TestRunCommandBadBytecode(t *testing.T) {
	_, err := execute(t, "run", "--bytecode", "/does/not/exist", "--log-level", "error")
	require.Error(t, err)
}
