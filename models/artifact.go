package models

import (
	"fmt"
	"strings"
	"time"
)

type Stage string

const (
	StageTranslate Stage = "translate"
	StageTopics    Stage = "topics"
	StageNotes     Stage = "notes"
)

// AllStages lists the stages in the order the pipeline runs them.
var AllStages = []Stage{StageTranslate, StageTopics, StageNotes}

func (s Stage) Valid() bool {
	switch s {
	case StageTranslate, StageTopics, StageNotes:
		return true
	}
	return false
}

// ParseStage accepts a stage name case-insensitively.
func ParseStage(name string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage %q", name)
	}
	return s, nil
}

// ParseStages parses names in order, dropping duplicates. An empty list
// yields AllStages.
func ParseStages(names []string) ([]Stage, error) {
	if len(names) == 0 {
		return append([]Stage(nil), AllStages...), nil
	}

	seen := make(map[Stage]bool, len(names))
	stages := make([]Stage, 0, len(names))
	for _, name := range names {
		s, err := ParseStage(name)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		stages = append(stages, s)
	}
	return stages, nil
}

// Artifact is the raw model output of one pipeline stage.
type Artifact struct {
	Stage     Stage     `json:"stage"`
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

type TopicList struct {
	Artifact
	Items []string `json:"items"`
}
