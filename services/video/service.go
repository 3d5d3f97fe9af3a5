package video

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/metrics"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/repository"
	"github.com/nijaru/yt-notes/services/pipeline"
	"github.com/nijaru/yt-notes/services/transcript"
	"github.com/nijaru/yt-notes/validation"
)

type service struct {
	transcripts transcript.Service
	metadata    transcript.MetadataService
	pipeline    pipeline.Service
	artifacts   repository.ArtifactRepository
	config      Config
	logger      *logrus.Logger
}

type ServiceOption func(*service)

func WithMetadata(metadata transcript.MetadataService) ServiceOption {
	return func(s *service) {
		s.metadata = metadata
	}
}

func WithArtifactCache(artifacts repository.ArtifactRepository) ServiceOption {
	return func(s *service) {
		s.artifacts = artifacts
	}
}

func WithLogger(logger *logrus.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logger
	}
}

func NewService(
	transcripts transcript.Service,
	pipelineService pipeline.Service,
	config Config,
	opts ...ServiceOption,
) Service {
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}
	s := &service{
		transcripts: transcripts,
		pipeline:    pipelineService,
		config:      config,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Process(ctx context.Context, req Request) (*models.Report, error) {
	const op = "VideoService.Process"

	stages := req.Stages
	if len(stages) == 0 {
		stages = models.AllStages
	}
	progress := req.Progress
	if progress == nil {
		progress = func(string) {}
	}

	lang := validation.NormalizeLanguage(req.Language, s.config.DefaultLanguage)
	logger := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"op":       op,
		"url":      req.URL,
		"language": lang,
	})

	progress("Identifying video")
	id, err := validation.ExtractVideoID(req.URL)
	if err != nil {
		logger.WithError(err).Warn("Rejected URL")
		return nil, err
	}
	logger = logger.WithField("video_id", id)

	report := &models.Report{
		ID:        uuid.New().String(),
		URL:       req.URL,
		VideoID:   id,
		Language:  lang,
		Results:   make([]models.StageResult, 0, len(stages)),
		CreatedAt: time.Now(),
	}

	if s.config.FetchMetadata && s.metadata != nil {
		progress("Loading video details")
		report.Video = s.lookupMetadata(ctx, logger, id)
	}

	progress("Fetching transcript")
	tr, err := s.transcripts.Get(ctx, id, lang)
	if err != nil {
		return nil, err
	}
	report.Transcript = tr

	for _, stage := range stages {
		progress(stageLabel(stage))
		report.Results = append(report.Results, s.runStage(ctx, stage, tr))
	}

	logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"stages":    len(report.Results),
		"failed":    report.Failed(),
	}).Info("Pipeline finished")

	return report, nil
}

func (s *service) Transcript(ctx context.Context, url, lang string) (*models.Transcript, error) {
	id, err := validation.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}
	return s.transcripts.Get(ctx, id, validation.NormalizeLanguage(lang, s.config.DefaultLanguage))
}

func (s *service) RunStage(ctx context.Context, url, lang string, stage models.Stage) (*models.StageResult, error) {
	const op = "VideoService.RunStage"

	if !stage.Valid() {
		return nil, errors.InvalidInput(op, nil, "Unknown stage")
	}

	tr, err := s.Transcript(ctx, url, lang)
	if err != nil {
		return nil, err
	}

	result := s.runStage(ctx, stage, tr)
	if result.Err != nil {
		return nil, result.Err
	}
	return &result, nil
}

func (s *service) runStage(ctx context.Context, stage models.Stage, tr *models.Transcript) models.StageResult {
	key := repository.ArtifactKey{
		VideoID:  tr.VideoID,
		Language: tr.Language,
		Stage:    stage,
		Model:    s.pipeline.Model(),
	}
	logger := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"video_id": tr.VideoID,
		"stage":    stage,
	})

	if cached := s.cachedArtifact(ctx, logger, key); cached != nil {
		if stage == models.StageTopics {
			return models.NewStageResult(stage, nil, pipeline.TopicsFromArtifact(logger, cached), nil)
		}
		return models.NewStageResult(stage, cached, nil, nil)
	}

	var artifact *models.Artifact
	var topics *models.TopicList
	var err error

	switch stage {
	case models.StageTranslate:
		artifact, err = s.pipeline.Translate(ctx, tr)
	case models.StageTopics:
		topics, err = s.pipeline.ExtractTopics(ctx, tr)
		if topics != nil {
			artifact = &topics.Artifact
		}
	case models.StageNotes:
		artifact, err = s.pipeline.GenerateNotes(ctx, tr)
	default:
		err = errors.InvalidInput("VideoService.runStage", nil, "Unknown stage")
	}

	if err == nil {
		s.storeArtifact(ctx, logger, key, artifact)
	}
	return models.NewStageResult(stage, artifact, topics, err)
}

func (s *service) cachedArtifact(ctx context.Context, logger *logrus.Entry, key repository.ArtifactKey) *models.Artifact {
	if s.artifacts == nil {
		return nil
	}

	artifact, err := s.artifacts.FindArtifact(ctx, key)
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.WithError(err).Warn("Artifact cache lookup failed")
		}
		metrics.ObserveCacheLookup("artifact", false)
		return nil
	}

	metrics.ObserveCacheLookup("artifact", true)
	logger.Debug("Artifact served from cache")
	return artifact
}

func (s *service) storeArtifact(ctx context.Context, logger *logrus.Entry, key repository.ArtifactKey, artifact *models.Artifact) {
	if s.artifacts == nil || artifact == nil {
		return
	}
	if err := s.artifacts.SaveArtifact(ctx, key, artifact); err != nil {
		logger.WithError(err).Warn("Failed to cache artifact")
	}
}

func (s *service) lookupMetadata(ctx context.Context, logger *logrus.Entry, id models.VideoID) *models.VideoInfo {
	info, err := s.metadata.Lookup(ctx, id)
	if err != nil {
		logger.WithError(err).Warn("Video metadata lookup failed")
		return nil
	}
	return info
}

func stageLabel(stage models.Stage) string {
	switch stage {
	case models.StageTranslate:
		return "Translating transcript"
	case models.StageTopics:
		return "Extracting key topics"
	case models.StageNotes:
		return "Generating notes"
	}
	return string(stage)
}
