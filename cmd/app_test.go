package cmd

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/services/pipeline"
)

type stubCompleter struct {
	reply string
}

func (s stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return s.reply, nil
}

func (s stubCompleter) Model() string { return "stub" }

func capture(t *testing.T, target **os.File) func() string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := *target
	*target = w
	t.Cleanup(func() { *target = orig })

	return func() string {
		*target = orig
		require.NoError(t, w.Close())
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		return string(data)
	}
}

func TestQuietLoggerKeepsStdoutClean(t *testing.T) {
	readStdout := capture(t, &os.Stdout)
	readStderr := capture(t, &os.Stderr)

	cfg := &config.Config{LogLevel: "info", LogFormat: "text"}
	log, err := newLogger(cfg, true)
	require.NoError(t, err)

	svc := pipeline.NewService(stubCompleter{reply: "1. A\n2. B"}, pipeline.DefaultTemplates(), log)
	topics, err := svc.ExtractTopics(context.Background(), &models.Transcript{VideoID: "dQw4w9WgXcQ", Text: "Hello world"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, topics.Items)

	assert.Empty(t, readStdout())
	assert.Contains(t, readStderr(), "fewer topics")
}

func TestLoggerDefaultsToStdout(t *testing.T) {
	readStdout := capture(t, &os.Stdout)

	cfg := &config.Config{LogLevel: "info", LogFormat: "text"}
	log, err := newLogger(cfg, false)
	require.NoError(t, err)

	log.Info("Server started")
	assert.Contains(t, readStdout(), "Server started")
}
