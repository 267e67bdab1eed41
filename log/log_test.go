package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("trace")
	require.NoError(t, err)
	require.Equal(t, LevelTrace, lvl)

	lvl, err = ParseLevel("Warning")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestModuleFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := Root()
	defer SetDefault(prev)
	SetDefault(NewLogger(JSONHandler(&buf)))

	DisableModule(StateDB)
	Debug(StateDB, "hidden")
	require.Zero(t, buf.Len())

	EnableModules("statedb_mod, avm")
	defer DisableModule(StateDB)
	defer DisableModule(AvmInterpreter)
	Debug(StateDB, "shown", "slot", 7)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "shown", rec["msg"])
	require.Equal(t, StateDB, rec["module"])
	require.Equal(t, "DEBUG", rec["level"])
	require.EqualValues(t, 7, rec["slot"])
}

func TestTerminalHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(NewTerminalHandlerWithLevel(&buf, LevelInfo, false))
	l.Debug(AvmInterpreter, "dropped")
	l.Warn(AvmInterpreter, "kept")
	out := buf.String()
	require.False(t, strings.Contains(out, "dropped"))
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "module=avm")
}
