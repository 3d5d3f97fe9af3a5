package validation

import (
	"regexp"
	"strings"

	"github.com/nijaru/yt-notes/errors"
	"github.com/nijaru/yt-notes/models"
)

// videoIDPattern matches an 11-character id following "v=" or a slash,
// which covers watch, youtu.be, embed and shorts links.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`)

// ExtractVideoID returns the first video id found in url.
func ExtractVideoID(url string) (models.VideoID, error) {
	const op = "validation.ExtractVideoID"

	match := videoIDPattern.FindStringSubmatch(url)
	if match == nil {
		return "", errors.InvalidURL(op, nil)
	}
	return models.VideoID(match[1]), nil
}

// NormalizeLanguage trims lang and substitutes fallback when it is empty.
// Anything else is left for the transcript provider to reject.
func NormalizeLanguage(lang, fallback string) string {
	if lang = strings.TrimSpace(lang); lang != "" {
		return lang
	}
	return fallback
}
