package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/models"
	"github.com/nijaru/yt-notes/services/video"
	"github.com/nijaru/yt-notes/validation"
)

type PipelineHandler struct {
	service   video.Service
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewPipelineHandler(service video.Service, validator *validation.Validator, logger *logrus.Logger) *PipelineHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PipelineHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

func (h *PipelineHandler) decode(w http.ResponseWriter, r *http.Request) (*models.PipelineRequest, string, []models.Stage, bool) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxBodyBytes,
		AllowedMethods:   []string{http.MethodPost},
	}); err != nil {
		respondError(w, r, err)
		return nil, "", nil, false
	}

	req, err := readPipelineRequest(r)
	if err != nil {
		respondError(w, r, err)
		return nil, "", nil, false
	}

	lang, stages, err := h.validator.ValidatePipelineRequest(req)
	if err != nil {
		respondError(w, r, err)
		return nil, "", nil, false
	}

	return req, lang, stages, true
}

// HandleVideoID handles POST /api/v1/video-id
func (h *PipelineHandler) HandleVideoID(w http.ResponseWriter, r *http.Request) {
	req, _, _, ok := h.decode(w, r)
	if !ok {
		return
	}

	id, err := validation.ExtractVideoID(req.URL)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.VideoIDResponse{VideoID: id})
}

// HandleTranscript handles POST /api/v1/transcript
func (h *PipelineHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	req, lang, _, ok := h.decode(w, r)
	if !ok {
		return
	}
	logger := h.logger.WithContext(r.Context()).WithField("url", req.URL)

	tr, err := h.service.Transcript(r.Context(), req.URL, lang)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithField("video_id", tr.VideoID).Info("Transcript served")
	respondJSON(w, r, http.StatusOK, models.TranscriptResponse{
		VideoID:    tr.VideoID,
		Transcript: tr,
	})
}

// HandleStage returns a handler for POST /api/v1/{stage}
func (h *PipelineHandler) HandleStage(stage models.Stage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, lang, _, ok := h.decode(w, r)
		if !ok {
			return
		}
		logger := h.logger.WithContext(r.Context()).WithFields(logrus.Fields{
			"url":   req.URL,
			"stage": stage,
		})

		result, err := h.service.RunStage(r.Context(), req.URL, lang, stage)
		if err != nil {
			respondError(w, r, err)
			return
		}

		resp := models.ArtifactResponse{
			Language: lang,
			Artifact: result.Artifact,
		}
		if result.Topics != nil {
			resp.Items = result.Topics.Items
		}
		if id, err := validation.ExtractVideoID(req.URL); err == nil {
			resp.VideoID = id
		}

		logger.Info("Stage served")
		respondJSON(w, r, http.StatusOK, resp)
	}
}

// HandleProcess handles POST /api/v1/process
func (h *PipelineHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	req, lang, stages, ok := h.decode(w, r)
	if !ok {
		return
	}

	report, err := h.service.Process(r.Context(), video.Request{
		URL:      req.URL,
		Language: lang,
		Stages:   stages,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.logger.WithContext(r.Context()).WithFields(logrus.Fields{
		"report_id": report.ID,
		"video_id":  report.VideoID,
		"failed":    report.Failed(),
	}).Info("Report served")
	respondJSON(w, r, http.StatusOK, report)
}
