package videos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameplay-insights/backend/internal/models"
	"github.com/gameplay-insights/backend/internal/store"
	"github.com/gameplay-insights/backend/pkg/tasks"
)

type fakeDocs struct {
	puts     map[string]interface{}
	document *models.AnalysisDocument
	fetchErr error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{puts: make(map[string]interface{})}
}

func (f *fakeDocs) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://bucket.s3.amazonaws.com/" + key + "?signed", nil
}

func (f *fakeDocs) PutJSON(ctx context.Context, key string, v interface{}) error {
	f.puts[key] = v
	return nil
}

func (f *fakeDocs) FetchAnalysisDocument(ctx context.Context, videoID string, out interface{}) error {
	if f.fetchErr != nil {
		return f.fetchErr
	}
	raw, _ := json.Marshal(f.document)
	return json.Unmarshal(raw, out)
}

func (f *fakeDocs) ListVideoMetadata(ctx context.Context, limit int32) ([]json.RawMessage, error) {
	return nil, nil
}

func (f *fakeDocs) URIFor(key string) string {
	return "s3://bucket/" + key
}

type fakeRunner struct {
	combined *models.CombinedOutput
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, videoURI, projectARN string) (*models.CombinedOutput, error) {
	return f.combined, f.err
}

func newTestHandler(t *testing.T, runner *fakeRunner, mode string) (*Handler, *store.VideoStore, *fakeDocs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	videoStore := store.NewVideoStore()
	docs := newFakeDocs()
	h := NewHandler(videoStore, docs, runner, tasks.NewRunner(nil), mode, nil)
	return h, videoStore, docs
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/api/video/upload-url", h.UploadURL)
	r.POST("/api/video/analyze/:id", h.Analyze)
	r.GET("/api/video/status/:id", h.Status)
	r.GET("/api/videos", h.List)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadURL(t *testing.T) {
	h, videoStore, docs := newTestHandler(t, &fakeRunner{}, "sync")
	r := newRouter(h)

	w := doJSON(r, http.MethodPost, "/api/video/upload-url", `{"fileName":"clip.mp4","contentType":"video/mp4"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			UploadURL string `json:"uploadUrl"`
			S3URI     string `json:"s3Uri"`
			VideoID   string `json:"videoId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data.VideoID)
	assert.NotEmpty(t, body.Data.UploadURL)
	assert.True(t, strings.HasSuffix(body.Data.S3URI, "/clip.mp4"))

	rec := videoStore.Get(body.Data.VideoID)
	require.NotNil(t, rec)
	assert.Equal(t, models.VideoStatusUploaded, rec.Status)

	// Metadata record persisted alongside.
	_, ok := docs.puts["metadata/videos/"+body.Data.VideoID+".json"]
	assert.True(t, ok)
}

func TestUploadURLMissingFileName(t *testing.T) {
	h, _, _ := newTestHandler(t, &fakeRunner{}, "sync")
	r := newRouter(h)

	w := doJSON(r, http.MethodPost, "/api/video/upload-url", `{"contentType":"video/mp4"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeUnknownVideo(t *testing.T) {
	h, _, _ := newTestHandler(t, &fakeRunner{}, "sync")
	r := newRouter(h)

	w := doJSON(r, http.MethodPost, "/api/video/analyze/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func seedVideo(videoStore *store.VideoStore, id, status string) {
	videoStore.Put(&models.VideoRecord{
		VideoID:    id,
		FileName:   "clip.mp4",
		S3Key:      "videos/" + id + "/clip.mp4",
		S3URI:      "s3://bucket/videos/" + id + "/clip.mp4",
		Status:     status,
		UploadTime: time.Now().UTC(),
	})
}

func TestAnalyzeSyncCompletes(t *testing.T) {
	runner := &fakeRunner{combined: &models.CombinedOutput{
		CustomOutput: &models.CustomOutput{
			Chapters: []models.RawChapter{{
				ChapterIndex:         0,
				StartTimestampMillis: 5000,
				EndTimestampMillis:   15000,
				InferenceResult: models.ChapterInference{
					PlayerActions: models.PlayerAction{ActionType: "goal", PlayerName: "Smith", Description: "Slapshot"},
				},
			}},
		},
	}}
	h, videoStore, docs := newTestHandler(t, runner, "sync")
	r := newRouter(h)
	seedVideo(videoStore, "v1", models.VideoStatusUploaded)

	w := doJSON(r, http.MethodPost, "/api/video/analyze/v1", "")
	require.Equal(t, http.StatusOK, w.Code)

	rec := videoStore.Get("v1")
	require.NotNil(t, rec)
	assert.Equal(t, models.VideoStatusCompleted, rec.Status)
	assert.NotNil(t, rec.AnalysisCompletedAt)

	stored, ok := docs.puts["analysis/v1/results.json"]
	require.True(t, ok, "analysis document persisted at the primary key")
	doc, ok := stored.(*models.AnalysisDocument)
	require.True(t, ok)
	assert.Equal(t, 1, doc.Results.GameStats.TotalGoals)
}

func TestAnalyzeSyncJobFailureMarksVideoFailed(t *testing.T) {
	runner := &fakeRunner{err: errors.New("job exploded")}
	h, videoStore, _ := newTestHandler(t, runner, "sync")
	r := newRouter(h)
	seedVideo(videoStore, "v1", models.VideoStatusUploaded)

	w := doJSON(r, http.MethodPost, "/api/video/analyze/v1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	rec := videoStore.Get("v1")
	require.NotNil(t, rec)
	assert.Equal(t, models.VideoStatusFailed, rec.Status)
	assert.Contains(t, rec.ErrorMessage, "job exploded")
}

func TestAnalyzeBackgroundAccepted(t *testing.T) {
	runner := &fakeRunner{combined: &models.CombinedOutput{CustomOutput: &models.CustomOutput{}}}
	h, videoStore, _ := newTestHandler(t, runner, "background")
	r := newRouter(h)
	seedVideo(videoStore, "v1", models.VideoStatusUploaded)

	w := doJSON(r, http.MethodPost, "/api/video/analyze/v1", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	h.tasks.Wait()
	rec := videoStore.Get("v1")
	require.NotNil(t, rec)
	assert.Equal(t, models.VideoStatusCompleted, rec.Status)
}

func TestStatusReturnsResultsWhenCompleted(t *testing.T) {
	h, videoStore, docs := newTestHandler(t, &fakeRunner{}, "sync")
	r := newRouter(h)
	seedVideo(videoStore, "v1", models.VideoStatusCompleted)
	docs.document = &models.AnalysisDocument{
		Results: &models.AnalysisResult{
			GameStats: models.GameStats{TotalGoals: 2},
		},
	}

	w := doJSON(r, http.MethodGet, "/api/video/status/v1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Status  string `json:"status"`
			Results struct {
				GameStats struct {
					TotalGoals int `json:"totalGoals"`
				} `json:"gameStats"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.VideoStatusCompleted, body.Data.Status)
	assert.Equal(t, 2, body.Data.Results.GameStats.TotalGoals)
}

func TestStatusMissingResults(t *testing.T) {
	h, videoStore, docs := newTestHandler(t, &fakeRunner{}, "sync")
	r := newRouter(h)
	seedVideo(videoStore, "v1", models.VideoStatusCompleted)
	docs.fetchErr = errors.New("no such key")

	w := doJSON(r, http.MethodGet, "/api/video/status/v1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListFiltersByStatus(t *testing.T) {
	h, videoStore, _ := newTestHandler(t, &fakeRunner{}, "sync")
	r := newRouter(h)
	seedVideo(videoStore, "v1", models.VideoStatusUploaded)
	seedVideo(videoStore, "v2", models.VideoStatusCompleted)

	w := doJSON(r, http.MethodGet, "/api/videos?status=completed", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Count  int `json:"count"`
			Videos []struct {
				VideoID string `json:"videoId"`
			} `json:"videos"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Count)
	require.Len(t, body.Data.Videos, 1)
	assert.Equal(t, "v2", body.Data.Videos[0].VideoID)
}
