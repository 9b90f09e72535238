package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug").Level())
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN").Level())
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty").Level())
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("").Level())
}

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(Config{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	l.Debug("hello", zap.String("harness", "WH-1"))
	require.NoError(t, l.Sync())

	entries := readJSONLines(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["msg"])
	assert.Equal(t, "WH-1", entries[0]["harness"])
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{Logger: zap.New(core), fields: map[string]interface{}{}}

	child := l.WithField("harness", "WH-1").WithFields(map[string]interface{}{"file": "a.yaml"})
	child.Info("parsed")

	assert.Empty(t, l.Fields())
	assert.Equal(t, map[string]interface{}{"harness": "WH-1", "file": "a.yaml"}, child.Fields())

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "WH-1", ctx["harness"])
	assert.Equal(t, "a.yaml", ctx["file"])
}

func TestTee(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := &Logger{Logger: zap.New(core), fields: map[string]interface{}{}}

	path := filepath.Join(t.TempDir(), "build.log")
	l, closeFn, err := base.Tee(path, "debug")
	require.NoError(t, err)

	l.Debug("only in the file")
	l.Info("in both")
	require.NoError(t, closeFn())

	assert.Equal(t, 1, logs.Len())

	entries := readJSONLines(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "only in the file", entries[0]["msg"])
	assert.Equal(t, "in both", entries[1]["msg"])
}

func TestTeeBadPath(t *testing.T) {
	_, _, err := Nop().Tee(filepath.Join(t.TempDir(), "missing", "build.log"), "info")
	assert.Error(t, err)
}

func readJSONLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}
