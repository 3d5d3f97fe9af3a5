package repository

import (
	"context"

	"github.com/nijaru/yt-notes/models"
)

// ArtifactKey identifies one cached stage output. Artifacts from different
// models or languages never collide.
type ArtifactKey struct {
	VideoID  models.VideoID
	Language string
	Stage    models.Stage
	Model    string
}

type TranscriptRepository interface {
	SaveTranscript(ctx context.Context, transcript *models.Transcript) error
	FindTranscript(ctx context.Context, id models.VideoID, lang string) (*models.Transcript, error)
}

type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, key ArtifactKey, artifact *models.Artifact) error
	FindArtifact(ctx context.Context, key ArtifactKey) (*models.Artifact, error)
}

type VideoInfoRepository interface {
	SaveVideoInfo(ctx context.Context, id models.VideoID, info *models.VideoInfo) error
	FindVideoInfo(ctx context.Context, id models.VideoID) (*models.VideoInfo, error)
}

// Cache is the session store used by the pipeline.
type Cache interface {
	TranscriptRepository
	ArtifactRepository
	VideoInfoRepository
	PurgeExpired(ctx context.Context) (int64, error)
	Close() error
}
