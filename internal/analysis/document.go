package analysis

import "github.com/gameplay-insights/backend/internal/models"

// BuildDocument assembles the persisted analysis document: the normalized
// result plus the raw constituent lists flattened out of the chapter
// inferences, which question answering and search operate over.
func BuildDocument(combined *models.CombinedOutput) *models.AnalysisDocument {
	result := Normalize(combined)
	doc := &models.AnalysisDocument{
		Results:       result,
		PlayerActions: []models.RawActionEntry{},
		GameEvents:    []models.RawEventEntry{},
		Chapters:      result.Chapters,
		GameContext:   result.GameContext,
	}
	if combined.CustomOutput == nil {
		return doc
	}
	for _, chapter := range combined.CustomOutput.Chapters {
		start := chapter.StartTimestampMillis / 1000
		timecode := chapter.StartTimecodeSMPTE
		if action := chapter.InferenceResult.PlayerActions; usable(action.ActionType, action.Description) {
			doc.PlayerActions = append(doc.PlayerActions, models.RawActionEntry{
				Player:      action.PlayerName,
				Action:      action.ActionType,
				Description: action.Description,
				Timestamp:   start,
				Timecode:    timecode,
			})
		}
		if event := chapter.InferenceResult.GameEvents; usable(event.EventType, event.Description) {
			doc.GameEvents = append(doc.GameEvents, models.RawEventEntry{
				Event:       event.EventType,
				Description: event.Description,
				Timestamp:   start,
				Timecode:    timecode,
			})
		}
	}
	return doc
}
