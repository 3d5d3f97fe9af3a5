package transcript

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/metrics"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/repository"
)

type metadataService struct {
	loader *VideoLoader
	cache  repository.VideoInfoRepository
	logger *logrus.Logger
}

type MetadataOption func(*metadataService)

// WithVideoInfoCache keeps looked-up details in the session cache so a
// repeat run of the same video makes no upstream call.
func WithVideoInfoCache(cache repository.VideoInfoRepository) MetadataOption {
	return func(m *metadataService) {
		m.cache = cache
	}
}

func WithMetadataLogger(logger *logrus.Logger) MetadataOption {
	return func(m *metadataService) {
		m.logger = logger
	}
}

func NewMetadataService(loader *VideoLoader, opts ...MetadataOption) MetadataService {
	if loader == nil {
		loader = NewVideoLoader(nil)
	}
	m := &metadataService{
		loader: loader,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *metadataService) Lookup(ctx context.Context, id models.VideoID) (*models.VideoInfo, error) {
	const op = "MetadataService.Lookup"
	logger := m.logger.WithContext(ctx).WithField("video_id", id)

	if m.cache != nil {
		info, err := m.cache.FindVideoInfo(ctx, id)
		if err == nil {
			metrics.ObserveCacheLookup("video", true)
			return info, nil
		}
		if !errors.IsNotFound(err) {
			logger.WithError(err).Warn("Video info cache lookup failed")
		}
		metrics.ObserveCacheLookup("video", false)
	}

	video, err := m.loader.Load(ctx, id)
	if err != nil {
		return nil, errors.NotFound(op, err, "Video metadata unavailable")
	}

	info := &models.VideoInfo{
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
	}

	if m.cache != nil {
		if err := m.cache.SaveVideoInfo(ctx, id, info); err != nil {
			logger.WithError(err).Warn("Failed to cache video info")
		}
	}

	return info, nil
}
