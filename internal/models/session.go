package models

import "time"

// Message is one transcript entry in a conversation session.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a conversational context, optionally bound to one video.
// Deleted on explicit end-session.
type Session struct {
	SessionID string    `json:"sessionId"`
	VideoID   string    `json:"videoId,omitempty"`
	S3URI     string    `json:"s3Uri,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}
