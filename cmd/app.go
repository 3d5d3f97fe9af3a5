package cmd

import (
	"context"
	"os"

	"github.com/kkdai/youtube/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/logger"
	"github.com/nijaru/yt-notes/repository"
	"github.com/nijaru/yt-notes/repository/sqlite"
	"github.com/nijaru/yt-notes/services/llm"
	"github.com/nijaru/yt-notes/services/pipeline"
	"github.com/nijaru/yt-notes/services/transcript"
	"github.com/nijaru/yt-notes/services/video"
)

// App holds the wired services for one process.
type App struct {
	config      *config.Config
	logger      *logrus.Logger
	cache       repository.Cache
	transcripts transcript.Service
	video       video.Service
}

// newLogger builds the process logger. Quiet commands print their result on
// stdout, so their console logs go to stderr and only warnings show.
func newLogger(cfg *config.Config, quiet bool) (*logrus.Logger, error) {
	opts := logger.Options{
		Dir:    cfg.LogDir,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}
	if quiet {
		opts.Console = os.Stderr
	}

	log, err := logger.NewLogger(opts)
	if err != nil {
		return nil, err
	}
	if quiet && cfg.LogLevel != "debug" {
		log.SetLevel(logrus.WarnLevel)
	}
	return log, nil
}

// newTranscriptApp wires only what transcript retrieval needs, so commands
// that never call the model work without a credential.
func newTranscriptApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, *transcript.VideoLoader, error) {
	app := &App{config: cfg, logger: log}

	if cfg.Cache.Enabled {
		cache, err := sqlite.NewRepository(ctx, cfg.Cache.DSN, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open session cache")
		}
		app.cache = cache
	}

	loader := transcript.NewVideoLoader(&youtube.Client{})
	provider, err := transcript.NewProvider(cfg.Transcript, loader)
	if err != nil {
		app.Close()
		return nil, nil, err
	}

	throttle, err := transcript.NewThrottle(cfg.Transcript)
	if err != nil {
		app.Close()
		return nil, nil, err
	}

	opts := []transcript.ServiceOption{transcript.WithLogger(log)}
	if app.cache != nil {
		opts = append(opts, transcript.WithCache(app.cache))
	}
	app.transcripts = transcript.NewService(provider, throttle, transcript.Config{
		FetchTimeout: cfg.Transcript.FetchTimeout,
	}, opts...)

	return app, loader, nil
}

// newApp wires the full pipeline. cfg must come from config.Load so the
// model credential is present.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	app, loader, err := newTranscriptApp(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	templates, err := pipeline.LoadTemplates(cfg.LLM.NotesTemplatePath)
	if err != nil {
		app.Close()
		return nil, err
	}

	completer, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	metadataOpts := []transcript.MetadataOption{transcript.WithMetadataLogger(log)}
	opts := []video.ServiceOption{video.WithLogger(log)}
	if app.cache != nil {
		metadataOpts = append(metadataOpts, transcript.WithVideoInfoCache(app.cache))
		opts = append(opts, video.WithArtifactCache(app.cache))
	}
	opts = append(opts, video.WithMetadata(transcript.NewMetadataService(loader, metadataOpts...)))

	app.video = video.NewService(
		app.transcripts,
		pipeline.NewService(completer, templates, log),
		video.Config{
			DefaultLanguage: cfg.Transcript.DefaultLanguage,
			FetchMetadata:   true,
		},
		opts...,
	)

	return app, nil
}

func (a *App) Close() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close session cache")
	}
}
