package models

import "time"

// VideoStatus represents the video analysis lifecycle.
const (
	VideoStatusUploaded   = "uploaded"
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
	VideoStatusFailed     = "failed"
)

// VideoRecord tracks an uploaded video and its analysis lifecycle.
// Registry-owned; never deleted during the process lifetime.
type VideoRecord struct {
	VideoID             string     `json:"videoId"`
	FileName            string     `json:"fileName"`
	ContentType         string     `json:"contentType"`
	S3URI               string     `json:"s3Uri"`
	S3Key               string     `json:"s3Key"`
	Status              string     `json:"status"`
	UploadTime          time.Time  `json:"uploadTime"`
	AnalysisStartedAt   *time.Time `json:"analysisStartedAt,omitempty"`
	AnalysisCompletedAt *time.Time `json:"analysisCompletedAt,omitempty"`
	ProcessingDuration  float64    `json:"processingDuration,omitempty"` // seconds
	ErrorMessage        string     `json:"errorMessage,omitempty"`
}
