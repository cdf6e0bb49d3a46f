package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	for level, want := range map[string]zap.AtomicLevel{
		"debug": zap.NewAtomicLevelAt(zap.DebugLevel),
		"warn":  zap.NewAtomicLevelAt(zap.WarnLevel),
		"":      zap.NewAtomicLevelAt(zap.InfoLevel),
		"loud":  zap.NewAtomicLevelAt(zap.InfoLevel),
	} {
		l, err := New(level)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(want.Level()), "level %q", level)
		if want.Level() > zap.DebugLevel {
			assert.False(t, l.Core().Enabled(want.Level()-1), "level %q", level)
		}
	}
}
