package models

import (
	"time"
)

// VideoID is the 11-character identifier YouTube assigns to a video.
type VideoID string

func (id VideoID) String() string { return string(id) }

// WatchURL returns the canonical watch page for the video.
func (id VideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// Fragment is one caption unit returned by a transcript provider.
type Fragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the concatenated caption text for one video and language.
type Transcript struct {
	VideoID       VideoID   `json:"video_id"`
	Language      string    `json:"language"`
	Text          string    `json:"text"`
	FragmentCount int       `json:"fragment_count"`
	FetchedAt     time.Time `json:"fetched_at"`
}

type VideoInfo struct {
	Title    string        `json:"title"`
	Author   string        `json:"author"`
	Duration time.Duration `json:"duration"`
}
