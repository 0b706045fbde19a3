// Package query answers questions about analyzed videos. When a
// conversational agent is configured the question is forwarded with a
// structured context built from the analysis document; otherwise a local
// keyword responder extracts an answer from the raw action and event lists.
package query

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/gameplay-insights/backend/internal/models"
)

// TimestampRef points a caller at one supporting moment in the video.
type TimestampRef struct {
	Timestamp   float64 `json:"timestamp"`
	Description string  `json:"description"`
	Relevance   float64 `json:"relevance"`
}

// Answer is a question's reply with its supporting evidence. Confidence
// and relevance values are fixed per question category, not calibrated.
type Answer struct {
	Answer     string         `json:"answer"`
	Confidence float64        `json:"confidence"`
	Timestamps []TimestampRef `json:"relevantTimestamps"`
	Players    []string       `json:"relatedPlayers"`
	Sources    []string       `json:"sources"`
}

var (
	goalWords    = []string{"goal", "score", "scored"}
	playerWords  = []string{"player", "who"}
	timeWords    = []string{"when", "time", "timestamp"}
	summaryWords = []string{"summary", "what happened", "overview"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Respond classifies the question into a category by keyword and runs
// that category's extraction over the document's raw lists.
func Respond(question string, doc *models.AnalysisDocument) *Answer {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, goalWords):
		return goalAnswer(doc)
	case containsAny(q, playerWords):
		return playerAnswer(question, doc)
	case containsAny(q, timeWords):
		return timeAnswer(doc)
	case containsAny(q, summaryWords):
		return summaryAnswer(doc)
	default:
		return generalAnswer(q, doc)
	}
}

func fmtTS(sec float64) string {
	return fmt.Sprintf("%.1fs", sec)
}

func goalAnswer(doc *models.AnalysisDocument) *Answer {
	ans := &Answer{
		Confidence: 0.8,
		Timestamps: []TimestampRef{},
		Players:    []string{},
		Sources:    []string{"custom_analysis"},
	}

	var descriptions []string
	for _, action := range doc.PlayerActions {
		if !strings.Contains(strings.ToLower(action.Action), "goal") {
			continue
		}
		ans.Players = append(ans.Players, action.Player)
		ans.Timestamps = append(ans.Timestamps, TimestampRef{
			Timestamp:   action.Timestamp,
			Description: action.Player + " scored",
			Relevance:   1.0,
		})
		descriptions = append(descriptions, fmt.Sprintf("%s scored at %s", action.Player, fmtTS(action.Timestamp)))
	}

	if len(descriptions) > 0 {
		ans.Answer = "Goals in this video: " + strings.Join(descriptions, "; ")
	} else {
		ans.Answer = "No goals were detected in this video analysis."
		ans.Confidence = 0.6
	}
	return ans
}

func playerAnswer(question string, doc *models.AnalysisDocument) *Answer {
	ans := &Answer{
		Confidence: 0.7,
		Timestamps: []TimestampRef{},
		Players:    []string{},
		Sources:    []string{"custom_analysis"},
	}

	// Capitalized words in the question are treated as candidate names.
	var candidates []string
	for _, word := range strings.Fields(question) {
		runes := []rune(word)
		if len(runes) > 2 && unicode.IsUpper(runes[0]) {
			candidates = append(candidates, strings.ToLower(word))
		}
	}

	var descriptions []string
	for _, action := range doc.PlayerActions {
		name := strings.ToLower(action.Player)
		matched := false
		for _, cand := range candidates {
			if strings.Contains(name, cand) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		ans.Players = append(ans.Players, action.Player)
		ans.Timestamps = append(ans.Timestamps, TimestampRef{
			Timestamp:   action.Timestamp,
			Description: action.Player + " " + action.Action,
			Relevance:   0.9,
		})
		descriptions = append(descriptions, fmt.Sprintf("%s %s at %s", action.Player, action.Action, fmtTS(action.Timestamp)))
	}

	if len(descriptions) > 0 {
		ans.Answer = "Player actions found: " + strings.Join(descriptions, "; ")
	} else {
		ans.Answer = "No specific player actions found matching your query."
		ans.Confidence = 0.4
	}
	return ans
}

func timeAnswer(doc *models.AnalysisDocument) *Answer {
	ans := &Answer{
		Confidence: 0.6,
		Timestamps: []TimestampRef{},
		Players:    []string{},
		Sources:    []string{"standard_analysis", "custom_analysis"},
	}

	type event struct {
		ts   float64
		desc string
	}
	var events []event
	for _, action := range doc.PlayerActions {
		events = append(events, event{action.Timestamp, action.Player + " " + action.Action})
	}
	for _, ch := range doc.Chapters {
		events = append(events, event{ch.StartTime, ch.Summary})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].ts < events[j].ts })

	if len(events) == 0 {
		ans.Answer = "No timestamped events found in the analysis."
		return ans
	}

	var descriptions []string
	for i, ev := range events {
		if i >= 5 {
			break
		}
		descriptions = append(descriptions, fmt.Sprintf("%s: %s", fmtTS(ev.ts), ev.desc))
		ans.Timestamps = append(ans.Timestamps, TimestampRef{
			Timestamp:   ev.ts,
			Description: ev.desc,
			Relevance:   0.8,
		})
	}
	ans.Answer = "Key timestamps in the video: " + strings.Join(descriptions, "; ")
	ans.Confidence = 0.8
	return ans
}

func summaryAnswer(doc *models.AnalysisDocument) *Answer {
	ans := &Answer{
		Confidence: 0.9,
		Timestamps: []TimestampRef{},
		Players:    []string{},
		Sources:    []string{"custom_analysis", "standard_analysis"},
	}

	var parts []string
	if doc.GameContext.Location != "" {
		part := "Game at " + doc.GameContext.Location
		if doc.GameContext.Atmosphere != "" {
			part += " (" + doc.GameContext.Atmosphere + ")"
		}
		parts = append(parts, part)
	}

	for i, action := range doc.PlayerActions {
		if i >= 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %s at %s", action.Player, action.Action, fmtTS(action.Timestamp)))
		ans.Players = append(ans.Players, action.Player)
		ans.Timestamps = append(ans.Timestamps, TimestampRef{
			Timestamp:   action.Timestamp,
			Description: action.Player + " " + action.Action,
			Relevance:   0.9,
		})
	}

	if len(parts) > 0 {
		ans.Answer = strings.Join(parts, ". ")
	} else {
		ans.Answer = "This video contains gameplay footage with various player actions and game events."
		ans.Confidence = 0.5
	}
	return ans
}

func generalAnswer(questionLower string, doc *models.AnalysisDocument) *Answer {
	ans := &Answer{
		Answer:     "I found some information related to your question in the video analysis.",
		Confidence: 0.5,
		Timestamps: []TimestampRef{},
		Players:    []string{},
		Sources:    []string{"general_search"},
	}

	keywords := strings.Fields(questionLower)
	for _, action := range doc.PlayerActions {
		text := strings.ToLower(action.Player + " " + action.Action + " " + action.Description)
		if !containsAny(text, keywords) {
			continue
		}
		ans.Players = append(ans.Players, action.Player)
		ans.Timestamps = append(ans.Timestamps, TimestampRef{
			Timestamp:   action.Timestamp,
			Description: action.Player + " " + action.Action,
			Relevance:   0.7,
		})
	}
	return ans
}
