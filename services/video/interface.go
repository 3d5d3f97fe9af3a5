package video

import (
	"context"

	"github.com/nijaru/yt-notes/models"
)

// Service drives a URL through identification, transcript retrieval and the
// requested prompt stages.
type Service interface {
	// Process runs every requested stage over one transcript. An invalid URL
	// or an unavailable transcript aborts the run; a failing stage is
	// recorded in the report and the remaining stages still run.
	Process(ctx context.Context, req Request) (*models.Report, error)

	// Transcript identifies the video and returns its transcript.
	Transcript(ctx context.Context, url, lang string) (*models.Transcript, error)

	// RunStage runs a single stage and returns its error directly.
	RunStage(ctx context.Context, url, lang string, stage models.Stage) (*models.StageResult, error)
}

// ProgressFunc is told which step is about to start.
type ProgressFunc func(step string)

type Request struct {
	URL      string
	Language string
	Stages   []models.Stage
	Progress ProgressFunc
}

type Config struct {
	DefaultLanguage string
	FetchMetadata   bool
}
