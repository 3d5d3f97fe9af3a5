package models

import (
	"time"
)

// StageResult holds either an artifact or an error for one stage, never both.
type StageResult struct {
	Stage    Stage      `json:"stage"`
	Artifact *Artifact  `json:"artifact,omitempty"`
	Topics   *TopicList `json:"topics,omitempty"`
	Err      error      `json:"-"`
	Error    string     `json:"error,omitempty"`
}

func (r StageResult) OK() bool { return r.Err == nil }

func NewStageResult(stage Stage, artifact *Artifact, topics *TopicList, err error) StageResult {
	if err != nil {
		return StageResult{Stage: stage, Err: err, Error: err.Error()}
	}
	if topics != nil {
		a := topics.Artifact
		return StageResult{Stage: stage, Artifact: &a, Topics: topics}
	}
	return StageResult{Stage: stage, Artifact: artifact}
}

// Report is the outcome of running the pipeline over one URL.
type Report struct {
	ID         string        `json:"id"`
	URL        string        `json:"url"`
	VideoID    VideoID       `json:"video_id"`
	Language   string        `json:"language"`
	Video      *VideoInfo    `json:"video,omitempty"`
	Transcript *Transcript   `json:"transcript"`
	Results    []StageResult `json:"results"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Result returns the result for stage, if it ran.
func (r *Report) Result(stage Stage) (StageResult, bool) {
	for _, res := range r.Results {
		if res.Stage == stage {
			return res, true
		}
	}
	return StageResult{}, false
}

// Failed reports whether any stage failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return true
		}
	}
	return false
}
