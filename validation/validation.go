package validation

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/models"
)

const maxURLLength = 2048

type Validator struct {
	defaultLanguage string
}

func NewValidator(defaultLanguage string) *Validator {
	return &Validator{defaultLanguage: defaultLanguage}
}

// ValidatePipelineRequest checks a decoded request body and returns the
// normalized language and requested stages.
func (v *Validator) ValidatePipelineRequest(req *models.PipelineRequest) (string, []models.Stage, error) {
	const op = "Validator.ValidatePipelineRequest"

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return "", nil, errors.InvalidInput(op, nil, "URL is required")
	}
	if len(req.URL) > maxURLLength {
		return "", nil, errors.InvalidInput(op, nil, "URL is too long")
	}

	stages, err := models.ParseStages(req.Stages)
	if err != nil {
		return "", nil, errors.InvalidInput(op, err, err.Error())
	}

	return NormalizeLanguage(req.Language, v.defaultLanguage), stages, nil
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
