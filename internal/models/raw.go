package models

// Raw Bedrock Data Automation output documents. Field names follow the
// service's JSON schema, which is not under this project's control.

// StandardOutput is the service's standard analysis document.
type StandardOutput struct {
	Metadata StandardMetadata `json:"metadata"`
}

// StandardMetadata carries video-level metadata.
type StandardMetadata struct {
	DurationMillis float64 `json:"duration_millis"`
}

// CustomOutput is the blueprint-driven analysis document.
type CustomOutput struct {
	MatchedBlueprint MatchedBlueprint `json:"matched_blueprint"`
	InferenceResult  GameInference    `json:"inference_result"`
	Chapters         []RawChapter     `json:"chapters"`
}

// MatchedBlueprint identifies the blueprint that produced the custom output.
type MatchedBlueprint struct {
	Confidence float64 `json:"confidence"`
}

// GameInference is the top-level game context inference.
type GameInference struct {
	GameLocation   string `json:"game_location"`
	GameAtmosphere string `json:"game_atmosphere"`
	Advertisements string `json:"advertisements"` // comma-separated
}

// RawChapter is one analyzed segment with millisecond offsets and an SMPTE
// timecode.
type RawChapter struct {
	ChapterIndex         int              `json:"chapter_index"`
	StartTimestampMillis float64          `json:"start_timestamp_millis"`
	EndTimestampMillis   float64          `json:"end_timestamp_millis"`
	DurationMillis       float64          `json:"duration_millis"`
	StartTimecodeSMPTE   string           `json:"start_timecode_smpte"`
	InferenceResult      ChapterInference `json:"inference_result"`
}

// ChapterInference holds the per-chapter classified events.
type ChapterInference struct {
	PlayerActions      PlayerAction      `json:"player_actions"`
	GameEvents         GameEvent         `json:"game_events"`
	Violations         Violation         `json:"violations"`
	SpectatorReactions SpectatorReaction `json:"spectator_reactions"`
	LockerRoomScenes   SceneInference    `json:"locker_room_scenes"`
	TeamBusScenes      SceneInference    `json:"team_bus_scenes"`
	OffFieldScenes     SceneInference    `json:"off_field_scenes"`
}

// PlayerAction is a classified individual action (goal, save, hit, ...).
type PlayerAction struct {
	ActionType  string `json:"action_type"`
	PlayerName  string `json:"player_name"`
	Description string `json:"description"`
}

// GameEvent is a classified game-wide event (celebration, fight, ...).
type GameEvent struct {
	EventType   string `json:"event_type"`
	Description string `json:"description"`
}

// Violation is a classified rule violation.
type Violation struct {
	ViolationType  string `json:"violation_type"`
	PlayerInvolved string `json:"player_involved"`
	Description    string `json:"description"`
}

// SpectatorReaction is a classified crowd reaction.
type SpectatorReaction struct {
	ReactionType string `json:"reaction_type"`
	Description  string `json:"description"`
}

// SceneInference is a classified off-play scene.
type SceneInference struct {
	SceneType   string `json:"scene_type"`
	Description string `json:"description"`
}

// CombinedOutput pairs the two analysis documents retrieved after a job
// succeeds. Either side may be absent, never both.
type CombinedOutput struct {
	StandardOutput *StandardOutput `json:"standardOutput,omitempty"`
	CustomOutput   *CustomOutput   `json:"customOutput,omitempty"`
}
