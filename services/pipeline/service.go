package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/metrics"
	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/services/llm"
)

type service struct {
	llm       llm.Completer
	templates *Templates
	logger    *logrus.Logger
	now       func() time.Time
}

func NewService(completer llm.Completer, templates *Templates, logger *logrus.Logger) Service {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &service{
		llm:       completer,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Model() string { return s.llm.Model() }

func (s *service) Translate(ctx context.Context, transcript *models.Transcript) (*models.Artifact, error) {
	return s.run(ctx, "PipelineService.Translate", models.StageTranslate, transcript)
}

func (s *service) GenerateNotes(ctx context.Context, transcript *models.Transcript) (*models.Artifact, error) {
	return s.run(ctx, "PipelineService.GenerateNotes", models.StageNotes, transcript)
}

func (s *service) ExtractTopics(ctx context.Context, transcript *models.Transcript) (*models.TopicList, error) {
	artifact, err := s.run(ctx, "PipelineService.ExtractTopics", models.StageTopics, transcript)
	if err != nil {
		return nil, err
	}
	return TopicsFromArtifact(s.logger.WithContext(ctx), artifact), nil
}

// TopicsFromArtifact parses the numbered list in a topics artifact. Extra
// items beyond five are dropped; a short list is kept and logged.
func TopicsFromArtifact(logger *logrus.Entry, artifact *models.Artifact) *models.TopicList {
	items := ParseTopics(artifact.Text)

	switch {
	case len(items) > topicCount:
		logger.WithField("topics", len(items)).Debug("Truncating topic list")
		items = items[:topicCount]
	case len(items) < topicCount:
		logger.WithField("topics", len(items)).Warn("Model returned fewer topics than requested")
	}

	return &models.TopicList{Artifact: *artifact, Items: items}
}

func (s *service) run(ctx context.Context, op string, stage models.Stage, transcript *models.Transcript) (*models.Artifact, error) {
	logger := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"stage":    stage,
		"video_id": transcript.VideoID,
		"model":    s.llm.Model(),
	})

	prompt, err := s.templates.Render(stage, transcript.Text)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build prompt")
	}

	start := time.Now()
	text, err := s.llm.Complete(ctx, prompt)
	elapsed := time.Since(start)
	metrics.ObserveStage(string(stage), elapsed, err)

	if err != nil {
		logger.WithError(err).Error("Model invocation failed")
		return nil, errors.ModelInvocation(op, err)
	}

	logger.WithFields(logrus.Fields{
		"duration": elapsed,
		"chars":    len(text),
	}).Info("Stage completed")

	return &models.Artifact{
		Stage:     stage,
		Text:      text,
		Model:     s.llm.Model(),
		CreatedAt: s.now(),
	}, nil
}
