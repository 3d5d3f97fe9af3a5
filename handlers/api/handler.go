package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/middleware"
	"github.com/nijaru/yt-notes/models"
)

const maxBodyBytes = 64 * 1024

// Response represents a standardized API response
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      errors.Kind `json:"kind,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	writeResponse(w, r, code, Response{
		Success:   code >= 200 && code < 300,
		Data:      payload,
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// respondError renders any error as one message that carries the
// underlying description. Foreign errors are not exposed.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.StatusCode(err)
	msg := "Internal server error"
	kind := errors.KindInternal

	if appErr, ok := errors.As(err); ok {
		msg = appErr.Error()
		kind = appErr.Kind
	}

	entry := middleware.GetLogger(r.Context()).WithFields(logrus.Fields{
		"error":  err,
		"kind":   kind,
		"status": code,
		"path":   r.URL.Path,
		"method": r.Method,
	})
	if code >= 500 {
		entry.Error("Request error")
	} else {
		entry.Warn("Request error")
	}

	writeResponse(w, r, code, Response{
		Success:   false,
		Error:     msg,
		Kind:      kind,
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

func writeResponse(w http.ResponseWriter, r *http.Request, code int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

// readPipelineRequest accepts a JSON body or form values, so the embedded
// page can post a plain form.
func readPipelineRequest(r *http.Request) (*models.PipelineRequest, error) {
	const op = "api.readPipelineRequest"

	req := &models.PipelineRequest{}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, errors.InvalidInput(op, err, "Invalid JSON format")
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, errors.InvalidInput(op, err, "Failed to parse form data")
	}
	req.URL = r.FormValue("url")
	req.Language = r.FormValue("language")
	req.Stages = r.Form["stages"]
	return req, nil
}
