package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/logger"
	"github.com/nijaru/yt-notes/models"
)

type stubCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Model() string { return "stub-model" }

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func testTranscript() *models.Transcript {
	return &models.Transcript{VideoID: "dQw4w9WgXcQ", Language: "es", Text: "Hello world"}
}

func TestTranslateReturnsRawReply(t *testing.T) {
	stub := &stubCompleter{reply: "Hola mundo"}
	svc := NewService(stub, nil, logger.Discard())

	artifact, err := svc.Translate(context.Background(), testTranscript())
	require.NoError(t, err)

	assert.Equal(t, "Hola mundo", artifact.Text)
	assert.Equal(t, models.StageTranslate, artifact.Stage)
	assert.Equal(t, "stub-model", artifact.Model)

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "translate it into English")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stub.prompts[0]), "Hello world"))
}

func TestStagesUseDistinctTemplates(t *testing.T) {
	stub := &stubCompleter{reply: "ok"}
	svc := NewService(stub, nil, logger.Discard())
	ctx := context.Background()

	_, err := svc.Translate(ctx, testTranscript())
	require.NoError(t, err)
	_, err = svc.ExtractTopics(ctx, testTranscript())
	require.NoError(t, err)
	_, err = svc.GenerateNotes(ctx, testTranscript())
	require.NoError(t, err)

	require.Len(t, stub.prompts, 3)
	assert.Contains(t, stub.prompts[1], "5 most important topics")
	assert.Contains(t, stub.prompts[2], "study notes")
	for _, p := range stub.prompts {
		assert.Contains(t, p, "Hello world")
	}
}

func TestModelFailure(t *testing.T) {
	stub := &stubCompleter{err: fmt.Errorf("401 unauthorized")}
	svc := NewService(stub, nil, logger.Discard())

	artifact, err := svc.GenerateNotes(context.Background(), testTranscript())
	assert.Nil(t, artifact)
	assert.True(t, errors.IsModelInvocation(err))
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestExtractTopicsParsesList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "exactly five",
			reply: "1. Goroutines\n2. Channels\n3. Select\n4. Context\n5. Mutexes",
			want:  []string{"Goroutines", "Channels", "Select", "Context", "Mutexes"},
		},
		{
			name:  "more than five truncated",
			reply: "Here are the topics:\n1) A\n2) B\n3) C\n4) D\n5) E\n6) F",
			want:  []string{"A", "B", "C", "D", "E"},
		},
		{
			name:  "fewer passed through",
			reply: "1. **Scheduling**\n2. Memory model",
			want:  []string{"Scheduling", "Memory model"},
		},
		{
			name:  "no list",
			reply: "The video covers several things.",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubCompleter{reply: tt.reply}, nil, logger.Discard())

			topics, err := svc.ExtractTopics(context.Background(), testTranscript())
			require.NoError(t, err)
			assert.Equal(t, tt.want, topics.Items)
			assert.Equal(t, tt.reply, topics.Text)
		})
	}
}

func TestNewTemplatesRequiresPlaceholder(t *testing.T) {
	_, err := NewTemplates(map[models.Stage]string{
		models.StageTranslate: "Translate: {{.Transcript}}",
		models.StageTopics:    "Topics: {{.Transcript}}",
		models.StageNotes:     "Notes without transcript",
	})
	assert.Error(t, err)

	_, err = NewTemplates(map[models.Stage]string{
		models.StageTranslate: "Translate: {{.Transcript}}",
	})
	assert.Error(t, err)

	_, err = NewTemplates(map[models.Stage]string{
		models.StageTranslate: "Translate: {{.Transcript}}",
		models.StageTopics:    "Topics: {{.Transcript}}",
		models.StageNotes:     "Notes: {{.Transcript",
	})
	assert.Error(t, err)
}

func TestLoadTemplatesOverridesNotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Custom notes for:\n{{.Transcript}}"), 0600))

	templates, err := LoadTemplates(path)
	require.NoError(t, err)

	prompt, err := templates.Render(models.StageNotes, "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Custom notes for:\nHello world", prompt)

	_, err = LoadTemplates(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.Error(t, err)
}

func TestRenderDoesNotEscape(t *testing.T) {
	prompt, err := DefaultTemplates().Render(models.StageTranslate, `<b>"quoted" & more</b>`)
	require.NoError(t, err)
	assert.Contains(t, prompt, `<b>"quoted" & more</b>`)
}
