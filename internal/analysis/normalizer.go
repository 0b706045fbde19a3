package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gameplay-insights/backend/internal/models"
)

// notApplicable is the sentinel the blueprint emits for chapters where a
// classifier fired without a usable description.
const notApplicable = "Not applicable"

// Heuristic confidence constants per event source. Placeholder values, not
// calibrated probabilities.
const (
	confidencePlayerAction = 0.9
	confidenceGameEvent    = 0.9
	confidenceViolation    = 0.85
	confidenceCrowd        = 0.8
	confidenceScene        = 0.85
)

// Normalize reshapes the combined job output into the frontend-facing
// analysis result. Pure transformation, no I/O. Any panic during the
// transformation degrades to an empty-but-well-formed result carrying an
// error field; callers treat that as "no usable highlights", not a hard
// failure.
func Normalize(combined *models.CombinedOutput) (result *models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			result = emptyResult(fmt.Sprintf("normalize analysis output: %v", r))
		}
	}()

	result = &models.AnalysisResult{
		Highlights:        []models.Highlight{},
		Scenes:            []models.Scene{},
		CrowdReactions:    []models.CrowdReaction{},
		Chapters:          []models.Chapter{},
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	keyPlayers := map[string]struct{}{}

	if combined.StandardOutput != nil {
		result.GameStats.TotalDuration = combined.StandardOutput.Metadata.DurationMillis / 1000
	}

	custom := combined.CustomOutput
	if custom == nil {
		result.GameStats.KeyPlayers = []string{}
		result.GameContext.Advertisements = []string{}
		return result
	}

	result.GameContext = models.GameContext{
		Location:       custom.InferenceResult.GameLocation,
		Atmosphere:     custom.InferenceResult.GameAtmosphere,
		Advertisements: splitAdvertisements(custom.InferenceResult.Advertisements),
	}
	result.AnalysisConfidence = custom.MatchedBlueprint.Confidence

	for _, chapter := range custom.Chapters {
		start := chapter.StartTimestampMillis / 1000
		end := chapter.EndTimestampMillis / 1000
		timecode := chapter.StartTimecodeSMPTE
		if timecode == "" {
			timecode = "00:00:00;00"
		}
		inference := chapter.InferenceResult

		result.Chapters = append(result.Chapters, models.Chapter{
			Index:     chapter.ChapterIndex,
			StartTime: start,
			EndTime:   end,
			Duration:  chapter.DurationMillis / 1000,
			Timecode:  timecode,
			Summary:   fmt.Sprintf("Chapter %d", chapter.ChapterIndex+1),
		})

		if action := inference.PlayerActions; usable(action.ActionType, action.Description) {
			result.Highlights = append(result.Highlights, models.Highlight{
				Type:         "player_" + action.ActionType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  action.Description,
				Timecode:     timecode,
				PlayerName:   action.PlayerName,
				Confidence:   confidencePlayerAction,
			})
			if strings.EqualFold(action.ActionType, "goal") {
				result.GameStats.TotalGoals++
			}
			if action.PlayerName != "" {
				keyPlayers[action.PlayerName] = struct{}{}
			}
		}

		if event := inference.GameEvents; usable(event.EventType, event.Description) {
			result.Highlights = append(result.Highlights, models.Highlight{
				Type:         "game_" + event.EventType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  event.Description,
				Timecode:     timecode,
				Confidence:   confidenceGameEvent,
			})
			if strings.EqualFold(event.EventType, "goal") {
				result.GameStats.TotalGoals++
			}
		}

		if v := inference.Violations; usable(v.ViolationType, v.Description) {
			result.Highlights = append(result.Highlights, models.Highlight{
				Type:         "violation_" + v.ViolationType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  v.Description,
				Timecode:     timecode,
				PlayerName:   v.PlayerInvolved,
				Confidence:   confidenceViolation,
			})
			result.GameStats.TotalPenalties++
			if v.PlayerInvolved != "" {
				keyPlayers[v.PlayerInvolved] = struct{}{}
			}
		}

		if reaction := inference.SpectatorReactions; usable(reaction.ReactionType, reaction.Description) {
			result.CrowdReactions = append(result.CrowdReactions, models.CrowdReaction{
				Type:         reaction.ReactionType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  reaction.Description,
				Timecode:     timecode,
			})
			result.Highlights = append(result.Highlights, models.Highlight{
				Type:         "crowd_" + reaction.ReactionType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  reaction.Description,
				Timecode:     timecode,
				Confidence:   confidenceCrowd,
			})
		}

		// Locker room and team bus scenes mirror into the highlight
		// timeline; off-field scenes do not.
		if scene := inference.LockerRoomScenes; usable(scene.SceneType, scene.Description) {
			result.Scenes = append(result.Scenes, models.Scene{
				Type:        "locker_" + scene.SceneType,
				StartTime:   start,
				EndTime:     end,
				Description: scene.Description,
			})
			result.Highlights = append(result.Highlights, models.Highlight{
				Type:         "scene_locker_" + scene.SceneType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  scene.Description,
				Timecode:     timecode,
				Confidence:   confidenceScene,
			})
		}
		if scene := inference.TeamBusScenes; usable(scene.SceneType, scene.Description) {
			result.Scenes = append(result.Scenes, models.Scene{
				Type:        "bus_" + scene.SceneType,
				StartTime:   start,
				EndTime:     end,
				Description: scene.Description,
			})
			result.Highlights = append(result.Highlights, models.Highlight{
				Type:         "scene_bus_" + scene.SceneType,
				Timestamp:    start,
				EndTimestamp: end,
				Description:  scene.Description,
				Timecode:     timecode,
				Confidence:   confidenceScene,
			})
		}
		if scene := inference.OffFieldScenes; usable(scene.SceneType, scene.Description) {
			result.Scenes = append(result.Scenes, models.Scene{
				Type:        scene.SceneType,
				StartTime:   start,
				EndTime:     end,
				Description: scene.Description,
			})
		}
	}

	sort.SliceStable(result.Highlights, func(i, j int) bool {
		return result.Highlights[i].Timestamp < result.Highlights[j].Timestamp
	})
	sort.SliceStable(result.CrowdReactions, func(i, j int) bool {
		return result.CrowdReactions[i].Timestamp < result.CrowdReactions[j].Timestamp
	})
	sort.SliceStable(result.Chapters, func(i, j int) bool {
		return result.Chapters[i].Index < result.Chapters[j].Index
	})

	result.GameStats.KeyPlayers = make([]string, 0, len(keyPlayers))
	for name := range keyPlayers {
		result.GameStats.KeyPlayers = append(result.GameStats.KeyPlayers, name)
	}
	sort.Strings(result.GameStats.KeyPlayers)
	result.GameStats.HighlightsCount = len(result.Highlights)
	return result
}

// usable reports whether a classified entry carries a real type and a
// description other than the "Not applicable" sentinel.
func usable(typeTag, description string) bool {
	return typeTag != "" && description != "" && description != notApplicable
}

func splitAdvertisements(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func emptyResult(errMsg string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Highlights:     []models.Highlight{},
		Scenes:         []models.Scene{},
		CrowdReactions: []models.CrowdReaction{},
		Chapters:       []models.Chapter{},
		GameStats: models.GameStats{
			KeyPlayers: []string{},
		},
		GameContext: models.GameContext{
			Advertisements: []string{},
		},
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		Error:             errMsg,
	}
}
