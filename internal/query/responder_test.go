package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameplay-insights/backend/internal/models"
)

func sampleDocument() *models.AnalysisDocument {
	return &models.AnalysisDocument{
		Results: &models.AnalysisResult{
			GameStats: models.GameStats{TotalDuration: 300},
		},
		PlayerActions: []models.RawActionEntry{
			{Player: "Smith", Action: "goal", Description: "Wrist shot top shelf", Timestamp: 45, Timecode: "00:00:45;00"},
			{Player: "Jones", Action: "save", Description: "Glove save", Timestamp: 90, Timecode: "00:01:30;00"},
			{Player: "Smith", Action: "hit", Description: "Open-ice hit", Timestamp: 120, Timecode: "00:02:00;00"},
		},
		GameEvents: []models.RawEventEntry{
			{Event: "goal", Description: "Game-tying goal", Timestamp: 200, Timecode: "00:03:20;00"},
		},
		Chapters: []models.Chapter{
			{Index: 0, StartTime: 0, EndTime: 150, Summary: "Chapter 1"},
			{Index: 1, StartTime: 150, EndTime: 300, Summary: "Chapter 2"},
		},
		GameContext: models.GameContext{Location: "Home arena", Atmosphere: "loud"},
	}
}

func TestRespondGoalBucket(t *testing.T) {
	ans := Respond("Who scored the goals?", sampleDocument())

	assert.Equal(t, 0.8, ans.Confidence)
	assert.Contains(t, ans.Answer, "Smith scored")
	require.Len(t, ans.Timestamps, 1)
	assert.Equal(t, 45.0, ans.Timestamps[0].Timestamp)
	assert.Equal(t, 1.0, ans.Timestamps[0].Relevance)
	assert.Equal(t, []string{"Smith"}, ans.Players)
}

func TestRespondGoalBucketNoGoals(t *testing.T) {
	doc := sampleDocument()
	doc.PlayerActions = doc.PlayerActions[1:2] // only the save

	ans := Respond("any goals?", doc)
	assert.Equal(t, 0.6, ans.Confidence)
	assert.Contains(t, ans.Answer, "No goals were detected")
}

func TestRespondGoalTakesPrecedenceOverPlayer(t *testing.T) {
	// "who" and "goal" both match; the goal bucket wins.
	ans := Respond("who scored a goal", sampleDocument())
	assert.Equal(t, []string{"custom_analysis"}, ans.Sources)
	assert.Contains(t, ans.Answer, "Goals in this video")
}

func TestRespondPlayerBucket(t *testing.T) {
	ans := Respond("Who is Jones and what did they do?", sampleDocument())

	assert.Equal(t, 0.7, ans.Confidence)
	assert.Contains(t, ans.Answer, "Jones save")
	assert.Equal(t, []string{"Jones"}, ans.Players)
}

func TestRespondPlayerBucketNoMatch(t *testing.T) {
	ans := Respond("What did Nobody do, who was it?", sampleDocument())
	assert.Equal(t, 0.4, ans.Confidence)
	assert.Contains(t, ans.Answer, "No specific player actions")
}

func TestRespondTimeBucket(t *testing.T) {
	ans := Respond("when did things happen", sampleDocument())

	assert.Equal(t, 0.8, ans.Confidence)
	assert.NotEmpty(t, ans.Timestamps)
	assert.LessOrEqual(t, len(ans.Timestamps), 5)
	for i := 1; i < len(ans.Timestamps); i++ {
		assert.LessOrEqual(t, ans.Timestamps[i-1].Timestamp, ans.Timestamps[i].Timestamp)
	}
}

func TestRespondSummaryBucket(t *testing.T) {
	ans := Respond("give me an overview", sampleDocument())

	assert.Equal(t, 0.9, ans.Confidence)
	assert.Contains(t, ans.Answer, "Home arena")
}

func TestRespondGeneralBucket(t *testing.T) {
	ans := Respond("did the glove save matter", sampleDocument())

	assert.Equal(t, 0.5, ans.Confidence)
	require.Len(t, ans.Timestamps, 1)
	assert.Equal(t, 90.0, ans.Timestamps[0].Timestamp)
	assert.Equal(t, []string{"Jones"}, ans.Players)
}

func TestRelevanceScoring(t *testing.T) {
	// No shared words.
	assert.Equal(t, 0.0, Relevance("completely different text", "smith goal"))

	// One of two query words shared.
	assert.Equal(t, 0.5, Relevance("smith skates away", "smith goal"))

	// All words shared plus verbatim phrase: 1.0 + 0.3 capped at 1.0.
	assert.Equal(t, 1.0, Relevance("the smith goal was great", "smith goal"))

	// Verbatim bonus on a partial overlap.
	score := Relevance("a goal happened", "goal")
	assert.Equal(t, 1.0, score)

	assert.Equal(t, 0.0, Relevance("", "query"))
	assert.Equal(t, 0.0, Relevance("text", ""))
}

func TestSearchRanksAndCaps(t *testing.T) {
	doc := sampleDocument()
	results, total := Search(doc, "goal")

	require.NotEmpty(t, results)
	assert.Equal(t, len(results), total)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RelevanceScore, results[i].RelevanceScore)
	}
	for _, r := range results {
		assert.Greater(t, r.RelevanceScore, 0.3)
	}
}

func TestSearchNoMatches(t *testing.T) {
	results, total := Search(sampleDocument(), "zebra xylophone")
	assert.Empty(t, results)
	assert.Zero(t, total)
}

func TestSearchCapsAtTwenty(t *testing.T) {
	doc := &models.AnalysisDocument{}
	for i := 0; i < 30; i++ {
		doc.GameEvents = append(doc.GameEvents, models.RawEventEntry{
			Event:       "goal",
			Description: "goal scored",
			Timestamp:   float64(i),
		})
	}

	results, total := Search(doc, "goal")
	assert.Len(t, results, 20)
	assert.Equal(t, 30, total)
}

func TestBuildPromptIncludesContextAndQuestion(t *testing.T) {
	prompt := BuildPrompt(sampleDocument(), "Who scored?")

	assert.Contains(t, prompt, "User Question: Who scored?")
	assert.Contains(t, prompt, "Game Events (1 total)")
	assert.Contains(t, prompt, "Player Actions (3 total)")
	assert.Contains(t, prompt, "Location: Home arena")
	assert.Contains(t, prompt, "Total Chapters: 2")
}

func TestRelevantTimestampsPrefersEvents(t *testing.T) {
	refs := RelevantTimestamps(sampleDocument(), "tell me about the goal")

	require.NotEmpty(t, refs)
	assert.Equal(t, 0.9, refs[0].Relevance, "game events come first")
	assert.LessOrEqual(t, len(refs), 5)
}

func TestRelatedPlayersByName(t *testing.T) {
	players := RelatedPlayers(sampleDocument(), "how did smith play")
	assert.Equal(t, []string{"Smith"}, players)
}
