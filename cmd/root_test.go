package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrisdamba/foodpredict/internal/events"
	"github.com/chrisdamba/foodpredict/internal/logger"
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct{ closed int }

func (c *closeRecorder) WriteMessage(string, []byte) error { return nil }
func (c *closeRecorder) Close() error                      { c.closed++; return nil }

func TestCloseAppClosesSinkOnce(t *testing.T) {
	sink := &closeRecorder{}
	current = &app{log: logger.Nop(), publisher: events.NewPublisher(sink, "")}

	closeApp()
	closeApp()

	assert.Equal(t, 1, sink.closed)
	assert.Nil(t, current)
}

func TestExecuteReleasesAppWhenCommandFails(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "foodpredict.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("store: memory\nlog_mode: production\noutput:\n  destination: console\n"), 0o644))

	rootCmd.SetArgs([]string{"--config", cfg, "report", "send", "--id", "missing"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := execute(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, current)
}
