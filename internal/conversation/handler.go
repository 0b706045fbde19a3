package conversation

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gameplay-insights/backend/internal/models"
	"github.com/gameplay-insights/backend/internal/store"
	"github.com/gameplay-insights/backend/pkg/apperrs"
	"github.com/gameplay-insights/backend/pkg/response"
)

// AgentInvoker sends one user turn to the conversational agent.
type AgentInvoker interface {
	Configured() bool
	Invoke(ctx context.Context, sessionID, inputText string, attrs map[string]string) (string, error)
}

type Handler struct {
	sessions *store.SessionStore
	videos   *store.VideoStore
	agent    AgentInvoker
	logger   *zap.Logger
}

func NewHandler(sessions *store.SessionStore, videos *store.VideoStore, agent AgentInvoker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, videos: videos, agent: agent, logger: logger}
}

type startRequest struct {
	VideoID string `json:"videoId"`
}

// Start opens a session, optionally bound to a video so later turns
// carry its location to the agent.
func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.FromError(c, &apperrs.ValidationError{Msg: "invalid request body"})
			return
		}
	}

	sess := &models.Session{
		SessionID: uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
	if req.VideoID != "" {
		rec := h.videos.Get(req.VideoID)
		if rec == nil {
			response.FromError(c, &apperrs.NotFoundError{Resource: "video", ID: req.VideoID})
			return
		}
		sess.VideoID = rec.VideoID
		sess.S3URI = rec.S3URI
	}
	h.sessions.Put(sess)

	h.logger.Info("conversation started",
		zap.String("sessionId", sess.SessionID),
		zap.String("videoId", sess.VideoID))

	response.OK(c, gin.H{
		"sessionId": sess.SessionID,
		"videoId":   sess.VideoID,
	})
}

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Message relays one user turn to the agent and records both sides of
// the exchange in the session transcript.
func (h *Handler) Message(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, &apperrs.ValidationError{Msg: "invalid request body"})
		return
	}
	if req.SessionID == "" || req.Message == "" {
		response.FromError(c, &apperrs.ValidationError{Msg: "sessionId and message are required"})
		return
	}

	sess := h.sessions.Get(req.SessionID)
	if sess == nil {
		response.FromError(c, &apperrs.NotFoundError{Resource: "session", ID: req.SessionID})
		return
	}

	var attrs map[string]string
	if sess.S3URI != "" {
		attrs = map[string]string{
			"videoS3Uri": sess.S3URI,
			"videoId":    sess.VideoID,
		}
	}

	reply, err := h.agent.Invoke(c.Request.Context(), sess.SessionID, req.Message, attrs)
	if err != nil {
		h.logger.Error("agent invocation failed", zap.String("sessionId", sess.SessionID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	now := time.Now().UTC()
	h.sessions.Append(sess.SessionID,
		models.Message{Role: "user", Content: req.Message, Timestamp: now},
		models.Message{Role: "assistant", Content: reply, Timestamp: time.Now().UTC()},
	)

	response.OK(c, gin.H{
		"sessionId": sess.SessionID,
		"response":  reply,
	})
}

type endRequest struct {
	SessionID string `json:"sessionId"`
}

// End tears a session down. Ending an unknown session succeeds.
func (h *Handler) End(c *gin.Context) {
	var req endRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		response.FromError(c, &apperrs.ValidationError{Msg: "sessionId is required"})
		return
	}

	h.sessions.Delete(req.SessionID)
	response.OK(c, gin.H{
		"sessionId": req.SessionID,
		"message":   "conversation ended",
	})
}
