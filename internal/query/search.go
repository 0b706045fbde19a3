package query

import (
	"sort"
	"strings"

	"github.com/gameplay-insights/backend/internal/models"
)

const (
	relevanceThreshold = 0.3
	verbatimBonus      = 0.3
	maxSearchResults   = 20
)

// SearchResult is one matched fragment of the analysis document.
type SearchResult struct {
	Timestamp      float64 `json:"timestamp"`
	Type           string  `json:"type"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevanceScore"`
	Context        string  `json:"context,omitempty"`
}

// Relevance scores text against the query's words: shared words divided
// by query word count, plus a flat bonus when the full query appears
// verbatim, capped at 1.0.
func Relevance(text, queryLower string) float64 {
	queryWords := strings.Fields(queryLower)
	if text == "" || len(queryWords) == 0 {
		return 0.0
	}

	textLower := strings.ToLower(text)
	textWords := make(map[string]struct{})
	for _, w := range strings.Fields(textLower) {
		textWords[w] = struct{}{}
	}

	shared := 0
	seen := make(map[string]struct{})
	for _, w := range queryWords {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := textWords[w]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0.0
	}

	score := float64(shared) / float64(len(seen))
	if strings.Contains(textLower, queryLower) {
		score += verbatimBonus
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Search scores the document's actions, events, and chapter summaries
// against a free-text query. Returns the top matches above the relevance
// threshold, best first, plus the total match count before the cap.
func Search(doc *models.AnalysisDocument, query string) ([]SearchResult, int) {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	var results []SearchResult

	for _, action := range doc.PlayerActions {
		text := action.Player + " " + action.Action + " " + action.Description
		if score := Relevance(text, queryLower); score > relevanceThreshold {
			results = append(results, SearchResult{
				Timestamp:      action.Timestamp,
				Type:           "player_action",
				Content:        action.Player + " " + action.Action,
				RelevanceScore: score,
				Context:        action.Description,
			})
		}
	}
	for _, ev := range doc.GameEvents {
		text := ev.Event + " " + ev.Description
		if score := Relevance(text, queryLower); score > relevanceThreshold {
			results = append(results, SearchResult{
				Timestamp:      ev.Timestamp,
				Type:           "game_event",
				Content:        ev.Event,
				RelevanceScore: score,
				Context:        ev.Description,
			})
		}
	}
	for _, ch := range doc.Chapters {
		if score := Relevance(ch.Summary, queryLower); score > relevanceThreshold {
			results = append(results, SearchResult{
				Timestamp:      ch.StartTime,
				Type:           "chapter",
				Content:        ch.Summary,
				RelevanceScore: score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	total := len(results)
	if total > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results, total
}
