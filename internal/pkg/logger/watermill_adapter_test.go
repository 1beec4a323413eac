package logger

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	level   string
	module  string
	message string
	details map[string]interface{}
}

type recordingLogger struct {
	entries []entry
}

func (r *recordingLogger) record(level, module, message string, details map[string]interface{}) {
	r.entries = append(r.entries, entry{level, module, message, details})
}

func (r *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	r.record("debug", module, message, details)
}

func (r *recordingLogger) Info(module, message string, details map[string]interface{}) {
	r.record("info", module, message, details)
}

func (r *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	r.record("warn", module, message, details)
}

func (r *recordingLogger) Error(module, message string, details map[string]interface{}) {
	r.record("error", module, message, details)
}

func (r *recordingLogger) Sync() error { return nil }

func TestWatermillAdapter(t *testing.T) {
	rec := &recordingLogger{}
	var adapter watermill.LoggerAdapter = NewWatermillAdapter(rec)

	scoped := adapter.With(watermill.LogFields{"topic": "realtime.events"})
	scoped.Info("subscribed", watermill.LogFields{"consumer": "relay"})
	scoped.Error("handler failed", errors.New("boom"), nil)
	adapter.Trace("tick", nil)

	require.Len(t, rec.entries, 3)

	assert.Equal(t, "info", rec.entries[0].level)
	assert.Equal(t, watermillModule, rec.entries[0].module)
	assert.Equal(t, "realtime.events", rec.entries[0].details["topic"])
	assert.Equal(t, "relay", rec.entries[0].details["consumer"])

	assert.Equal(t, "error", rec.entries[1].level)
	assert.Equal(t, "boom", rec.entries[1].details["error"])
	assert.Equal(t, "realtime.events", rec.entries[1].details["topic"])

	assert.Equal(t, "debug", rec.entries[2].level)
	assert.NotContains(t, rec.entries[2].details, "topic")
}
