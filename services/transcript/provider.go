package transcript

import (
	"github.com/pkg/errors"

	"github.com/nijaru/yt-notes/config"
)

// NewProvider returns the configured upstream. The innertube provider shares
// loader with the metadata service.
func NewProvider(cfg config.TranscriptConfig, loader *VideoLoader) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderInnertube:
		return NewInnertubeProvider(loader), nil
	default:
		return nil, errors.Errorf("unknown transcript provider %q", cfg.Provider)
	}
}
