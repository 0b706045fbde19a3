package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gameplay-insights/backend/internal/analysis"
	"github.com/gameplay-insights/backend/internal/models"
	"github.com/gameplay-insights/backend/internal/store"
	"github.com/gameplay-insights/backend/pkg/apperrs"
	"github.com/gameplay-insights/backend/pkg/response"
	"github.com/gameplay-insights/backend/pkg/storage"
	"github.com/gameplay-insights/backend/pkg/tasks"
)

// DocumentStore is the slice of the object storage client the video
// endpoints need.
type DocumentStore interface {
	GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	PutJSON(ctx context.Context, key string, v interface{}) error
	FetchAnalysisDocument(ctx context.Context, videoID string, out interface{}) error
	ListVideoMetadata(ctx context.Context, limit int32) ([]json.RawMessage, error)
	URIFor(key string) string
}

// AnalysisRunner drives one analysis job from submission to downloaded output.
type AnalysisRunner interface {
	Run(ctx context.Context, videoURI, projectARN string) (*models.CombinedOutput, error)
}

type analysisRecord struct {
	AnalysisID  string     `json:"analysisId"`
	VideoID     string     `json:"videoId"`
	S3URI       string     `json:"s3Uri"`
	Status      string     `json:"status"`
	StartTime   time.Time  `json:"startTime"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type Handler struct {
	videos *store.VideoStore
	docs   DocumentStore
	runner AnalysisRunner
	tasks  *tasks.Runner
	mode   string
	logger *zap.Logger
}

func NewHandler(videos *store.VideoStore, docs DocumentStore, runner AnalysisRunner, bg *tasks.Runner, mode string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{videos: videos, docs: docs, runner: runner, tasks: bg, mode: mode, logger: logger}
}

type uploadURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// UploadURL issues a presigned PUT for a new clip and registers the video.
func (h *Handler) UploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, &apperrs.ValidationError{Msg: "invalid request body"})
		return
	}
	if req.FileName == "" {
		response.FromError(c, &apperrs.ValidationError{Msg: "fileName is required"})
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}

	videoID := uuid.New().String()
	key := storage.VideoKey(videoID, req.FileName)

	url, err := h.docs.GeneratePresignedUploadURL(c.Request.Context(), key, contentType, storage.UploadExpire)
	if err != nil {
		h.logger.Error("presign upload failed", zap.String("key", key), zap.Error(err))
		response.FromError(c, err)
		return
	}

	rec := &models.VideoRecord{
		VideoID:     videoID,
		FileName:    req.FileName,
		ContentType: contentType,
		S3Key:       key,
		S3URI:       h.docs.URIFor(key),
		Status:      models.VideoStatusUploaded,
		UploadTime:  time.Now().UTC(),
	}
	h.videos.Put(rec)

	if err := h.docs.PutJSON(c.Request.Context(), storage.VideoMetadataKey(videoID), rec); err != nil {
		h.logger.Warn("persist video metadata failed", zap.String("videoId", videoID), zap.Error(err))
	}

	response.OK(c, gin.H{
		"uploadUrl": url,
		"s3Uri":     rec.S3URI,
		"videoId":   videoID,
	})
}

// Analyze launches analysis for an uploaded video. Depending on the
// configured mode it either blocks until the job finishes or returns
// 202 and leaves the job to a background task.
func (h *Handler) Analyze(c *gin.Context) {
	videoID := c.Param("id")
	rec := h.videos.Get(videoID)
	if rec == nil {
		response.FromError(c, &apperrs.NotFoundError{Resource: "video", ID: videoID})
		return
	}
	if rec.S3URI == "" {
		response.FromError(c, &apperrs.ValidationError{Msg: "video has no uploaded object"})
		return
	}

	if h.mode == "background" {
		if h.tasks.InFlight(videoID) {
			response.OK(c, gin.H{
				"videoId": videoID,
				"status":  models.VideoStatusProcessing,
				"message": "analysis already in progress",
			})
			return
		}
		h.tasks.Go(videoID, func(ctx context.Context) error {
			_, err := h.process(ctx, videoID)
			return err
		})
		response.Accepted(c, gin.H{
			"videoId": videoID,
			"status":  models.VideoStatusProcessing,
			"message": "video analysis started",
		})
		return
	}

	doc, err := h.process(c.Request.Context(), videoID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	updated := h.videos.Get(videoID)
	response.OK(c, gin.H{
		"videoId": videoID,
		"status":  models.VideoStatusCompleted,
		"results": doc.Results,
		"metadata": gin.H{
			"analysisTime":       updated.AnalysisCompletedAt,
			"videoFileName":      updated.FileName,
			"processingDuration": updated.ProcessingDuration,
		},
		"message": fmt.Sprintf("Analysis completed in %.1f seconds", updated.ProcessingDuration),
	})
}

// process runs one analysis end to end and keeps the registry and the
// persisted metadata in step with it.
func (h *Handler) process(ctx context.Context, videoID string) (*models.AnalysisDocument, error) {
	started := time.Now().UTC()
	h.videos.Update(videoID, func(r *models.VideoRecord) {
		r.Status = models.VideoStatusProcessing
		r.AnalysisStartedAt = &started
		r.ErrorMessage = ""
	})
	rec := h.videos.Get(videoID)

	meta := analysisRecord{
		AnalysisID: videoID,
		VideoID:    videoID,
		S3URI:      rec.S3URI,
		Status:     models.VideoStatusProcessing,
		StartTime:  started,
	}
	if err := h.docs.PutJSON(ctx, storage.AnalysisMetadataKey(videoID), meta); err != nil {
		h.logger.Warn("persist analysis metadata failed", zap.String("videoId", videoID), zap.Error(err))
	}

	combined, err := h.runner.Run(ctx, rec.S3URI, "")
	if err != nil {
		h.fail(ctx, videoID, meta, err)
		return nil, err
	}

	doc := analysis.BuildDocument(combined)
	if err := h.docs.PutJSON(ctx, storage.AnalysisResultKey(videoID), doc); err != nil {
		err = fmt.Errorf("store analysis results: %w", err)
		h.fail(ctx, videoID, meta, err)
		return nil, err
	}

	completed := time.Now().UTC()
	duration := completed.Sub(started).Seconds()
	h.videos.Update(videoID, func(r *models.VideoRecord) {
		r.Status = models.VideoStatusCompleted
		r.AnalysisCompletedAt = &completed
		r.ProcessingDuration = duration
	})
	if rec = h.videos.Get(videoID); rec != nil {
		if err := h.docs.PutJSON(ctx, storage.VideoMetadataKey(videoID), rec); err != nil {
			h.logger.Warn("persist video metadata failed", zap.String("videoId", videoID), zap.Error(err))
		}
	}
	meta.Status = models.VideoStatusCompleted
	meta.CompletedAt = &completed
	if err := h.docs.PutJSON(ctx, storage.AnalysisMetadataKey(videoID), meta); err != nil {
		h.logger.Warn("persist analysis metadata failed", zap.String("videoId", videoID), zap.Error(err))
	}

	h.logger.Info("video analysis completed",
		zap.String("videoId", videoID),
		zap.Float64("durationSec", duration))
	return doc, nil
}

func (h *Handler) fail(ctx context.Context, videoID string, meta analysisRecord, cause error) {
	completed := time.Now().UTC()
	h.videos.Update(videoID, func(r *models.VideoRecord) {
		r.Status = models.VideoStatusFailed
		r.AnalysisCompletedAt = &completed
		r.ErrorMessage = cause.Error()
	})
	if rec := h.videos.Get(videoID); rec != nil {
		if err := h.docs.PutJSON(ctx, storage.VideoMetadataKey(videoID), rec); err != nil {
			h.logger.Warn("persist video metadata failed", zap.String("videoId", videoID), zap.Error(err))
		}
	}
	meta.Status = models.VideoStatusFailed
	meta.CompletedAt = &completed
	meta.Error = cause.Error()
	if err := h.docs.PutJSON(ctx, storage.AnalysisMetadataKey(videoID), meta); err != nil {
		h.logger.Warn("persist analysis metadata failed", zap.String("videoId", videoID), zap.Error(err))
	}
	h.logger.Error("video analysis failed", zap.String("videoId", videoID), zap.Error(cause))
}

// Status reports where a video is in its lifecycle and, once analysis
// has completed, returns the stored results.
func (h *Handler) Status(c *gin.Context) {
	videoID := c.Param("id")
	rec := h.videos.Get(videoID)
	if rec == nil {
		response.FromError(c, &apperrs.NotFoundError{Resource: "video", ID: videoID})
		return
	}

	body := gin.H{
		"videoId":  rec.VideoID,
		"fileName": rec.FileName,
		"status":   rec.Status,
	}
	if rec.AnalysisStartedAt != nil {
		body["analysisStartedAt"] = rec.AnalysisStartedAt
	}
	if rec.AnalysisCompletedAt != nil {
		body["analysisCompletedAt"] = rec.AnalysisCompletedAt
		body["processingDuration"] = rec.ProcessingDuration
	}
	if rec.ErrorMessage != "" {
		body["error"] = rec.ErrorMessage
	}

	if rec.Status == models.VideoStatusCompleted {
		var doc models.AnalysisDocument
		if err := h.docs.FetchAnalysisDocument(c.Request.Context(), videoID, &doc); err != nil {
			h.logger.Error("fetch analysis results failed", zap.String("videoId", videoID), zap.Error(err))
			response.FromError(c, &apperrs.NotFoundError{Resource: "analysis results", ID: videoID})
			return
		}
		body["results"] = doc.Results
	}

	response.OK(c, body)
}

// List returns registered videos. When the in-memory registry is empty
// it falls back to the persisted metadata records so a restarted service
// still sees earlier uploads.
func (h *Handler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
			response.FromError(c, &apperrs.ValidationError{Msg: "limit must be a positive integer"})
			return
		}
	}
	status := c.Query("status")

	records := h.videos.List(status, limit)
	if h.videos.Len() == 0 {
		persisted, err := h.docs.ListVideoMetadata(c.Request.Context(), int32(limit))
		if err != nil {
			h.logger.Warn("list persisted video metadata failed", zap.Error(err))
		} else {
			for _, raw := range persisted {
				var rec models.VideoRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					continue
				}
				if status == "" || rec.Status == status {
					records = append(records, &rec)
				}
			}
		}
	}
	if records == nil {
		records = []*models.VideoRecord{}
	}

	response.OK(c, gin.H{
		"videos": records,
		"count":  len(records),
	})
}
