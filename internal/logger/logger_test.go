package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/enerscope/enerscope/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newBufferLogger(level logger.Level) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(level),
		logger.WithColors(false),
	)
	return log, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  logger.Level
	}{
		{"DEBUG", logger.DEBUG},
		{"debug", logger.DEBUG},
		{"INFO", logger.INFO},
		{"WARN", logger.WARN},
		{"WARNING", logger.WARN},
		{"ERROR", logger.ERROR},
		{"garbage", logger.INFO},
		{"", logger.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.input))
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(logger.WARN)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestLogger_FormatsArgs(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)

	log.Info("fetched %d readings for %s", 42, "gas")
	assert.Contains(t, buf.String(), "fetched 42 readings for gas")
}

func TestLogger_Prefix(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)

	log.WithPrefix("sync").Info("pass complete")
	assert.Contains(t, buf.String(), "[sync] pass complete")
}

func TestLogger_FieldsSortedAndInherited(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)

	log.WithField("utility", "gas").WithField("attempt", 2).Info("retrying")

	// Fields print in sorted key order.
	assert.Contains(t, buf.String(), "retrying attempt=2 utility=gas")
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)

	child := log.WithField("utility", "gas")
	log.Info("parent message")
	child.Info("child message")

	output := buf.String()
	assert.Contains(t, output, "child message utility=gas")
	assert.NotContains(t, output, "parent message utility=gas")
}

func TestContextRoundTrip(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)

	ctx := logger.NewContext(context.Background(), log.WithPrefix("request"))
	logger.FromContext(ctx).Info("handled")

	assert.Contains(t, buf.String(), "[request] handled")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, logger.FromContext(context.Background()))
}
