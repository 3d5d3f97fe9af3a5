package pipeline

import (
	"context"

	"github.com/nijaru/yt-notes/models"
)

// Service runs the prompt stages. Stages are independent: each renders its
// own template over the same transcript and makes exactly one model call.
type Service interface {
	Translate(ctx context.Context, transcript *models.Transcript) (*models.Artifact, error)
	ExtractTopics(ctx context.Context, transcript *models.Transcript) (*models.TopicList, error)
	GenerateNotes(ctx context.Context, transcript *models.Transcript) (*models.Artifact, error)
	Model() string
}
