package transcript

import (
	"context"
	"time"

	"github.com/nijaru/yt-notes/models"
)

// Service returns the transcript for a video in one language.
type Service interface {
	Get(ctx context.Context, id models.VideoID, lang string) (*models.Transcript, error)
}

// Provider fetches ordered caption fragments from an upstream source.
// Errors are opaque to callers.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, id models.VideoID, lang string) ([]models.Fragment, error)
}

// Throttle paces upstream access. It is invoked after every upstream fetch.
type Throttle interface {
	Wait(ctx context.Context) error
}

type MetadataService interface {
	Lookup(ctx context.Context, id models.VideoID) (*models.VideoInfo, error)
}

type Config struct {
	FetchTimeout time.Duration
}
