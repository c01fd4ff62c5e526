package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel("info"))
	assert.Equal(t, logrus.InfoLevel, parseLevel("verbose"))
}

func TestConfigure_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspector.log")

	Configure("debug", path)
	t.Cleanup(func() {
		_ = Close()
		Configure("info", "")
	})

	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	WithField("component", "test").Debug("written to file")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), "written to file")
}
