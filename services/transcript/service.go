package transcript

import (
	"context"
	"strings"
	"time"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/metrics"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/repository"
	"github.com/sirupsen/logrus"
)

type service struct {
	provider Provider
	throttle Throttle
	cache    repository.TranscriptRepository
	config   Config
	logger   *logrus.Logger
	now      func() time.Time
}

type ServiceOption func(*service)

// WithCache enables the session cache. Cache hits skip both the upstream
// call and the throttle.
func WithCache(cache repository.TranscriptRepository) ServiceOption {
	return func(s *service) {
		s.cache = cache
	}
}

func WithLogger(logger *logrus.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logger
	}
}

func NewService(provider Provider, throttle Throttle, config Config, opts ...ServiceOption) Service {
	s := &service{
		provider: provider,
		throttle: throttle,
		config:   config,
		logger:   logrus.StandardLogger(),
		now:      time.Now,
	}
	if s.throttle == nil {
		s.throttle = NoThrottle()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Get(ctx context.Context, id models.VideoID, lang string) (*models.Transcript, error) {
	const op = "TranscriptService.Get"
	logger := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"video_id": id,
		"language": lang,
		"provider": s.provider.Name(),
	})

	if cached := s.lookup(ctx, logger, id, lang); cached != nil {
		return cached, nil
	}

	fragments, err := s.fetch(ctx, id, lang)
	if err != nil {
		logger.WithError(err).Warn("Transcript fetch failed")
		return nil, errors.TranscriptUnavailable(op, err)
	}

	if err := s.throttle.Wait(ctx); err != nil {
		logger.WithError(err).Warn("Throttle wait interrupted")
		return nil, errors.TranscriptUnavailable(op, err)
	}

	transcript := &models.Transcript{
		VideoID:       id,
		Language:      lang,
		Text:          JoinFragments(fragments),
		FragmentCount: len(fragments),
		FetchedAt:     s.now(),
	}

	logger.WithFields(logrus.Fields{
		"fragments": transcript.FragmentCount,
		"chars":     len(transcript.Text),
	}).Info("Transcript fetched")

	if s.cache != nil {
		if err := s.cache.SaveTranscript(ctx, transcript); err != nil {
			logger.WithError(err).Warn("Failed to cache transcript")
		}
	}

	return transcript, nil
}

func (s *service) fetch(ctx context.Context, id models.VideoID, lang string) ([]models.Fragment, error) {
	if s.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	fragments, err := s.provider.Fetch(ctx, id, lang)
	metrics.ObserveTranscriptFetch(s.provider.Name(), time.Since(start), err)
	return fragments, err
}

func (s *service) lookup(ctx context.Context, logger *logrus.Entry, id models.VideoID, lang string) *models.Transcript {
	if s.cache == nil {
		return nil
	}

	cached, err := s.cache.FindTranscript(ctx, id, lang)
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.WithError(err).Warn("Transcript cache lookup failed")
		}
		metrics.ObserveCacheLookup("transcript", false)
		return nil
	}

	metrics.ObserveCacheLookup("transcript", true)
	logger.Debug("Transcript served from cache")
	return cached
}

// JoinFragments concatenates fragment texts in order with single spaces.
// Fragment text is not trimmed or otherwise altered.
func JoinFragments(fragments []models.Fragment) string {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return strings.Join(texts, " ")
}
