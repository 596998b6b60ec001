package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSubLoggersPrefixOutput(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))

	Infof(Engine, "running %d events", 5)
	Warnf(Portfolio, "negative position")
	Debugf(Broker, "accepted order")
	Errorf(Risk, "halted")
	Info(Statistics, "done")

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, "ENGINE running 5 events", entries[0].Message)
	assert.Equal(t, "PORTFOLIO negative position", entries[1].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "BROKER accepted order", entries[2].Message)
	assert.Equal(t, "RISK halted", entries[3].Message)
	assert.Equal(t, "STATISTICS done", entries[4].Message)

	// a nil logger is ignored rather than installed
	SetLogger(nil)
	Infof(Engine, "still alive")
	assert.Equal(t, 6, logs.Len())
}
