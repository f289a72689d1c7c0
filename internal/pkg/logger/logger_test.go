package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":    zapcore.DebugLevel,
		"INFO":     zapcore.InfoLevel,
		"warn":     zapcore.WarnLevel,
		"error":    zapcore.ErrorLevel,
		"nonsense": zapcore.InfoLevel,
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			log, err := New(input, false)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(want-1))
			}
		})
	}
}

func TestNew_Development(t *testing.T) {
	log, err := New("debug", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
