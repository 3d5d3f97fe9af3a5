package models

// PipelineRequest is the JSON body accepted by every pipeline endpoint.
type PipelineRequest struct {
	URL      string   `json:"url"`
	Language string   `json:"language,omitempty"`
	Stages   []string `json:"stages,omitempty"`
}

type VideoIDResponse struct {
	VideoID VideoID `json:"video_id"`
}

type TranscriptResponse struct {
	VideoID    VideoID     `json:"video_id"`
	Video      *VideoInfo  `json:"video,omitempty"`
	Transcript *Transcript `json:"transcript"`
}

type ArtifactResponse struct {
	VideoID  VideoID   `json:"video_id"`
	Language string    `json:"language"`
	Artifact *Artifact `json:"artifact"`
	Items    []string  `json:"items,omitempty"`
}
