package pid_test

import (
	"os"
	"strconv"
	"testing"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRemove(t *testing.T) {
	f := pid.New(t.TempDir(), "out/gauge.png")
	assert.Contains(t, f.Path(), "speedometer-out_gauge.png.pid")

	require.NoError(t, f.Write())
	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	// Rewriting our own PID is not a conflict.
	require.NoError(t, f.Write())

	require.NoError(t, f.Remove())
	assert.NoFileExists(t, f.Path())
	assert.NoError(t, f.Remove(), "removing twice is fine")
}

func TestWriteRejectsRunningProcess(t *testing.T) {
	f := pid.New(t.TempDir(), "gauge")

	// The parent of the test process is alive for the duration of the test.
	require.NoError(t, os.WriteFile(f.Path(), []byte(strconv.Itoa(os.Getppid())), 0o600))

	err := f.Write()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
}

func TestWriteTakesOverStaleFile(t *testing.T) {
	f := pid.New(t.TempDir(), "gauge")
	require.NoError(t, os.WriteFile(f.Path(), []byte("garbage"), 0o600))

	require.NoError(t, f.Write())
	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}
