package query

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gameplay-insights/backend/internal/models"
	"github.com/gameplay-insights/backend/internal/store"
	"github.com/gameplay-insights/backend/pkg/apperrs"
	"github.com/gameplay-insights/backend/pkg/response"
)

// DocumentFetcher loads the stored analysis document for a video.
type DocumentFetcher interface {
	FetchAnalysisDocument(ctx context.Context, videoID string, out interface{}) error
}

// AgentInvoker sends a prompt to the conversational agent.
type AgentInvoker interface {
	Configured() bool
	Invoke(ctx context.Context, sessionID, inputText string, attrs map[string]string) (string, error)
}

type Handler struct {
	videos *store.VideoStore
	docs   DocumentFetcher
	agent  AgentInvoker
	logger *zap.Logger
}

func NewHandler(videos *store.VideoStore, docs DocumentFetcher, agent AgentInvoker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{videos: videos, docs: docs, agent: agent, logger: logger}
}

// loadDocument checks the video is analyzed and fetches its document.
func (h *Handler) loadDocument(c *gin.Context, videoID string) (*models.AnalysisDocument, bool) {
	rec := h.videos.Get(videoID)
	if rec == nil {
		response.FromError(c, &apperrs.NotFoundError{Resource: "video", ID: videoID})
		return nil, false
	}
	if rec.Status != models.VideoStatusCompleted {
		response.FromError(c, &apperrs.ValidationError{Msg: "video analysis not completed yet"})
		return nil, false
	}

	var doc models.AnalysisDocument
	if err := h.docs.FetchAnalysisDocument(c.Request.Context(), videoID, &doc); err != nil {
		h.logger.Error("fetch analysis document failed", zap.String("videoId", videoID), zap.Error(err))
		response.FromError(c, &apperrs.NotFoundError{Resource: "analysis results", ID: videoID})
		return nil, false
	}
	return &doc, true
}

type askRequest struct {
	VideoID   string `json:"videoId"`
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

// Ask answers a question about an analyzed video, through the agent when
// one is configured and through the keyword responder otherwise.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, &apperrs.ValidationError{Msg: "invalid request body"})
		return
	}
	if req.VideoID == "" || req.Question == "" {
		response.FromError(c, &apperrs.ValidationError{Msg: "videoId and question are required"})
		return
	}

	doc, ok := h.loadDocument(c, req.VideoID)
	if !ok {
		return
	}

	var ans *Answer
	if h.agent.Configured() {
		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		reply, err := h.agent.Invoke(c.Request.Context(), sessionID, BuildPrompt(doc, req.Question), nil)
		if err != nil {
			h.logger.Error("agent question failed", zap.String("videoId", req.VideoID), zap.Error(err))
			response.FromError(c, err)
			return
		}
		ans = &Answer{
			Answer:     reply,
			Confidence: 0.9,
			Timestamps: RelevantTimestamps(doc, req.Question),
			Players:    RelatedPlayers(doc, req.Question),
			Sources:    []string{"data_automation", "agent"},
		}
	} else {
		ans = Respond(req.Question, doc)
	}

	response.OK(c, gin.H{
		"videoId":            req.VideoID,
		"question":           req.Question,
		"answer":             ans.Answer,
		"confidence":         ans.Confidence,
		"relevantTimestamps": ans.Timestamps,
		"relatedPlayers":     ans.Players,
	})
}

type searchRequest struct {
	VideoID     string `json:"videoId"`
	SearchQuery string `json:"searchQuery"`
}

// SearchContent scores the document's fragments against a free-text query.
func (h *Handler) SearchContent(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, &apperrs.ValidationError{Msg: "invalid request body"})
		return
	}
	if req.VideoID == "" || req.SearchQuery == "" {
		response.FromError(c, &apperrs.ValidationError{Msg: "videoId and searchQuery are required"})
		return
	}

	doc, ok := h.loadDocument(c, req.VideoID)
	if !ok {
		return
	}

	started := time.Now()
	results, total := Search(doc, req.SearchQuery)

	response.OK(c, gin.H{
		"videoId":      req.VideoID,
		"searchQuery":  req.SearchQuery,
		"results":      results,
		"totalResults": total,
		"searchTime":   time.Since(started).String(),
	})
}

// Summary builds a comprehensive summary of one analyzed video.
func (h *Handler) Summary(c *gin.Context) {
	videoID := c.Param("videoId")
	doc, ok := h.loadDocument(c, videoID)
	if !ok {
		return
	}

	title := "Gameplay Analysis Summary"
	if doc.GameContext.Location != "" {
		title = doc.GameContext.Location + " Gameplay Analysis"
	}

	var parts []string
	if n := len(doc.PlayerActions); n > 0 {
		parts = append(parts, fmt.Sprintf("Analysis identified %d key player actions", n))
	}
	if n := len(doc.Chapters); n > 0 {
		parts = append(parts, fmt.Sprintf("Video contains %d distinct chapters", n))
	}
	summary := "Video analysis completed successfully."
	if len(parts) > 0 {
		summary = parts[0]
		for _, p := range parts[1:] {
			summary += ". " + p
		}
	}

	keyMoments := []gin.H{}
	for i, action := range doc.PlayerActions {
		if i >= 5 {
			break
		}
		keyMoments = append(keyMoments, gin.H{
			"timestamp":   action.Timestamp,
			"event":       action.Action,
			"description": action.Player + " " + action.Action,
		})
	}

	playerStats := make(map[string]int)
	for _, action := range doc.PlayerActions {
		name := action.Player
		if name == "" {
			name = "Unknown"
		}
		playerStats[name]++
	}

	var duration float64
	if doc.Results != nil {
		duration = doc.Results.GameStats.TotalDuration
	}

	response.OK(c, gin.H{
		"videoId":     videoID,
		"title":       title,
		"summary":     summary,
		"keyMoments":  keyMoments,
		"playerStats": playerStats,
		"gameContext": doc.GameContext,
		"duration":    duration,
	})
}
