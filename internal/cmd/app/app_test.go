package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	require.Equal(t, zapcore.InfoLevel, Level(""))
	require.Equal(t, zapcore.InfoLevel, Level("bogus"))
	require.Equal(t, zapcore.DebugLevel, Level("debug"))
	require.Equal(t, zapcore.WarnLevel, Level("WARN"))
}
