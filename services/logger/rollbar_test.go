package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rm-a0/flippit-sub000/core"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", Debug: debug})
	logger.Enable(false)
	return logger, &buf
}

func TestRollbarLogger_levels(t *testing.T) {
	logger, buf := newTestLogger(false)

	logger.Debug("hidden")
	assert.Empty(t, buf.String(), "debug is off outside debug mode")

	logger.Info("started")
	assert.Equal(t, "INFO started\n", buf.String())

	buf.Reset()
	logger.SetLevel(LevelError)
	logger.Warn("dropped")
	assert.Empty(t, buf.String())

	debugLogger, debugBuf := newTestLogger(true)
	debugLogger.Debug("shown")
	assert.Equal(t, "DEBUG shown\n", debugBuf.String())
}

func TestRollbarLogger_line(t *testing.T) {
	logger, buf := newTestLogger(false)
	caller := core.Caller{ID: uuid.New(), Username: "alice"}

	logger.Warn("slow request", map[string]interface{}{"path": "/api/cards", "method": "GET"}, caller, 42)
	assert.Equal(t, "WARN slow request method=GET path=/api/cards 42 caller=alice\n", buf.String())

	buf.Reset()
	logger.Error("failed", errors.New("boom"))
	assert.Contains(t, buf.String(), "ERROR failed\nboom")
}

func Test_parse(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")
	alice := core.Caller{Username: "alice"}

	ev := parse([]interface{}{first, second, alice, core.Caller{Username: "bob"}, map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2}})
	assert.Equal(t, first, ev.err)
	assert.Equal(t, &alice, ev.caller)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, ev.fields)
	assert.Equal(t, []interface{}{second}, ev.extra)
}
