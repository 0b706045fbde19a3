package models

// Flattened raw lists derived from the custom output's chapter inferences
// when the analysis document is persisted. The keyword responder and search
// operate over these rather than the shaped AnalysisResult.

// RawActionEntry is a flattened player action with offsets in seconds.
type RawActionEntry struct {
	Player      string  `json:"player"`
	Action      string  `json:"action"`
	Description string  `json:"description"`
	Timestamp   float64 `json:"timestamp"`
	Timecode    string  `json:"timecode"`
}

// RawEventEntry is a flattened game event with offsets in seconds.
type RawEventEntry struct {
	Event       string  `json:"event"`
	Description string  `json:"description"`
	Timestamp   float64 `json:"timestamp"`
	Timecode    string  `json:"timecode"`
}

// AnalysisDocument is the document persisted at analysis/<videoId>/results.json:
// the shaped result plus the raw constituent lists question answering needs.
type AnalysisDocument struct {
	Results       *AnalysisResult  `json:"results"`
	PlayerActions []RawActionEntry `json:"player_actions"`
	GameEvents    []RawEventEntry  `json:"game_events"`
	Chapters      []Chapter        `json:"chapters"`
	GameContext   GameContext      `json:"game_context"`
}
