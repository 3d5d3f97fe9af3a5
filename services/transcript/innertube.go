package transcript

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nijaru/yt-notes/models"
)

// innertubeProvider reads caption tracks through YouTube's innertube API.
// The player response comes from the shared loader, so a preceding
// metadata lookup is not repeated.
type innertubeProvider struct {
	loader *VideoLoader
}

func NewInnertubeProvider(loader *VideoLoader) Provider {
	if loader == nil {
		loader = NewVideoLoader(nil)
	}
	return &innertubeProvider{loader: loader}
}

func (p *innertubeProvider) Name() string { return "innertube" }

func (p *innertubeProvider) Fetch(ctx context.Context, id models.VideoID, lang string) ([]models.Fragment, error) {
	video, err := p.loader.Load(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "load video %s", id)
	}

	segments, err := p.loader.Client().GetTranscriptCtx(ctx, video, lang)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s transcript for %s", lang, id)
	}
	if len(segments) == 0 {
		return nil, errors.Errorf("empty %s transcript for %s", lang, id)
	}

	fragments := make([]models.Fragment, len(segments))
	for i, seg := range segments {
		fragments[i] = models.Fragment{
			Text:     seg.Text,
			Start:    float64(seg.StartMs) / 1000,
			Duration: float64(seg.Duration) / 1000,
		}
	}
	return fragments, nil
}
