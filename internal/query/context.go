package query

import (
	"fmt"
	"strings"

	"github.com/gameplay-insights/backend/internal/models"
)

const contextItemLimit = 5

// BuildPrompt assembles the agent prompt: a structured digest of the
// analysis document followed by the user's question.
func BuildPrompt(doc *models.AnalysisDocument, question string) string {
	var b strings.Builder
	b.WriteString("Game Analysis Context:\n")
	b.WriteString(buildContext(doc))
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease answer the question based on the structured game analysis data provided above. ")
	b.WriteString("Include specific timestamps, player names, and confidence scores when available. ")
	b.WriteString("If the data doesn't contain relevant information for the question, please indicate that clearly.")
	return b.String()
}

func buildContext(doc *models.AnalysisDocument) string {
	var parts []string

	if len(doc.GameEvents) > 0 {
		parts = append(parts, fmt.Sprintf("Game Events (%d total):", len(doc.GameEvents)))
		for i, ev := range doc.GameEvents {
			if i >= contextItemLimit {
				break
			}
			parts = append(parts, fmt.Sprintf("- %s at %s: %s", ev.Event, fmtTS(ev.Timestamp), ev.Description))
		}
	}

	if len(doc.PlayerActions) > 0 {
		parts = append(parts, fmt.Sprintf("\nPlayer Actions (%d total):", len(doc.PlayerActions)))
		for i, action := range doc.PlayerActions {
			if i >= contextItemLimit {
				break
			}
			parts = append(parts, fmt.Sprintf("- %s %s at %s", action.Player, action.Action, fmtTS(action.Timestamp)))
		}
	}

	if doc.GameContext.Location != "" || doc.GameContext.Atmosphere != "" {
		parts = append(parts, "\nGame Context:")
		if doc.GameContext.Location != "" {
			parts = append(parts, "- Location: "+doc.GameContext.Location)
		}
		if doc.GameContext.Atmosphere != "" {
			parts = append(parts, "- Atmosphere: "+doc.GameContext.Atmosphere)
		}
	}

	parts = append(parts, "\nAnalysis Metadata:")
	parts = append(parts, fmt.Sprintf("- Total Chapters: %d", len(doc.Chapters)))
	if doc.Results != nil {
		parts = append(parts, fmt.Sprintf("- Total Duration: %s", fmtTS(doc.Results.GameStats.TotalDuration)))
	}

	return strings.Join(parts, "\n")
}

// RelevantTimestamps picks moments whose event or action text shares a
// word with the question. Events score above actions; capped at 5.
func RelevantTimestamps(doc *models.AnalysisDocument, question string) []TimestampRef {
	words := strings.Fields(strings.ToLower(question))
	refs := []TimestampRef{}

	for _, ev := range doc.GameEvents {
		text := strings.ToLower(ev.Event + " " + ev.Description)
		if containsAny(text, words) {
			refs = append(refs, TimestampRef{
				Timestamp:   ev.Timestamp,
				Description: ev.Event + ": " + ev.Description,
				Relevance:   0.9,
			})
		}
	}
	for _, action := range doc.PlayerActions {
		text := strings.ToLower(action.Player + " " + action.Action)
		if containsAny(text, words) {
			refs = append(refs, TimestampRef{
				Timestamp:   action.Timestamp,
				Description: action.Player + " " + action.Action,
				Relevance:   0.8,
			})
		}
	}

	if len(refs) > contextItemLimit {
		refs = refs[:contextItemLimit]
	}
	return refs
}

// RelatedPlayers picks player names mentioned in or matching the question.
func RelatedPlayers(doc *models.AnalysisDocument, question string) []string {
	questionLower := strings.ToLower(question)
	words := strings.Fields(questionLower)

	seen := make(map[string]struct{})
	players := []string{}
	for _, action := range doc.PlayerActions {
		if action.Player == "" {
			continue
		}
		text := strings.ToLower(action.Player + " " + action.Action)
		nameWords := strings.Fields(strings.ToLower(action.Player))
		if containsAny(text, words) || containsAny(questionLower, nameWords) {
			if _, dup := seen[action.Player]; !dup {
				seen[action.Player] = struct{}{}
				players = append(players, action.Player)
			}
		}
	}
	return players
}
