package models

// Highlight is a single normalized timeline event.
type Highlight struct {
	Type         string  `json:"type"`
	Timestamp    float64 `json:"timestamp"`    // seconds from video start
	EndTimestamp float64 `json:"endTimestamp"` // seconds
	Description  string  `json:"description"`
	Timecode     string  `json:"timecode"`
	PlayerName   string  `json:"playerName,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// Scene is an off-play segment (locker room, team bus, off-field).
type Scene struct {
	Type        string  `json:"type"`
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Description string  `json:"description"`
}

// CrowdReaction is a spectator reaction entry.
type CrowdReaction struct {
	Type         string  `json:"type"`
	Timestamp    float64 `json:"timestamp"`
	EndTimestamp float64 `json:"endTimestamp"`
	Description  string  `json:"description"`
	Timecode     string  `json:"timecode"`
}

// Chapter is a fixed time segment of the source video.
type Chapter struct {
	Index     int     `json:"index"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Duration  float64 `json:"duration"`
	Timecode  string  `json:"timecode"`
	Summary   string  `json:"summary"`
}

// GameStats aggregates counters across the whole video.
type GameStats struct {
	TotalGoals      int      `json:"totalGoals"`
	TotalPenalties  int      `json:"totalPenalties"`
	KeyPlayers      []string `json:"keyPlayers"`
	TotalDuration   float64  `json:"totalDuration"` // seconds
	HighlightsCount int      `json:"highlightsCount"`
}

// GameContext carries overall game setting extracted by the blueprint.
type GameContext struct {
	Location       string   `json:"location"`
	Atmosphere     string   `json:"atmosphere"`
	Advertisements []string `json:"advertisements"`
}

// AnalysisResult is the normalized, frontend-facing analysis document.
// Highlights and crowd reactions are sorted ascending by start offset,
// chapters ascending by index. Immutable once produced.
type AnalysisResult struct {
	Highlights         []Highlight     `json:"highlights"`
	GameStats          GameStats       `json:"gameStats"`
	Scenes             []Scene         `json:"scenes"`
	GameContext        GameContext     `json:"gameContext"`
	CrowdReactions     []CrowdReaction `json:"crowdReactions"`
	Chapters           []Chapter       `json:"chapters"`
	AnalysisConfidence float64         `json:"analysisConfidence"`
	AnalysisTimestamp  string          `json:"analysisTimestamp"`
	Error              string          `json:"error,omitempty"`
}
