package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameplay-insights/backend/internal/models"
)

func TestVideoStoreGetReturnsCopy(t *testing.T) {
	s := NewVideoStore()
	s.Put(&models.VideoRecord{VideoID: "v1", Status: models.VideoStatusUploaded})

	rec := s.Get("v1")
	require.NotNil(t, rec)
	rec.Status = models.VideoStatusFailed

	again := s.Get("v1")
	assert.Equal(t, models.VideoStatusUploaded, again.Status, "mutating the copy does not touch the stored record")
}

func TestVideoStoreUpdate(t *testing.T) {
	s := NewVideoStore()
	s.Put(&models.VideoRecord{VideoID: "v1", Status: models.VideoStatusUploaded})

	ok := s.Update("v1", func(r *models.VideoRecord) {
		r.Status = models.VideoStatusProcessing
	})
	assert.True(t, ok)
	assert.Equal(t, models.VideoStatusProcessing, s.Get("v1").Status)

	assert.False(t, s.Update("missing", func(r *models.VideoRecord) {}))
}

func TestVideoStoreListFilterAndLimit(t *testing.T) {
	s := NewVideoStore()
	s.Put(&models.VideoRecord{VideoID: "a", Status: models.VideoStatusCompleted})
	s.Put(&models.VideoRecord{VideoID: "b", Status: models.VideoStatusUploaded})
	s.Put(&models.VideoRecord{VideoID: "c", Status: models.VideoStatusCompleted})

	completed := s.List(models.VideoStatusCompleted, 0)
	assert.Len(t, completed, 2)

	limited := s.List("", 2)
	assert.Len(t, limited, 2)
	assert.Equal(t, 3, s.Len())
}

func TestVideoStoreConcurrentUpdates(t *testing.T) {
	s := NewVideoStore()
	s.Put(&models.VideoRecord{VideoID: "v1"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("v1", func(r *models.VideoRecord) {
				r.ProcessingDuration++
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50.0, s.Get("v1").ProcessingDuration)
}

func TestSessionStoreAppendAndDelete(t *testing.T) {
	s := NewSessionStore()
	s.Put(&models.Session{SessionID: "s1", CreatedAt: time.Now()})

	ok := s.Append("s1",
		models.Message{Role: "user", Content: "hi"},
		models.Message{Role: "assistant", Content: "hello"},
	)
	require.True(t, ok)

	sess := s.Get("s1")
	require.NotNil(t, sess)
	assert.Len(t, sess.Messages, 2)

	// The returned transcript is a copy.
	sess.Messages[0].Content = "changed"
	assert.Equal(t, "hi", s.Get("s1").Messages[0].Content)

	s.Delete("s1")
	assert.Nil(t, s.Get("s1"))
	assert.False(t, s.Append("s1", models.Message{Role: "user", Content: "gone"}))

	s.Delete("s1") // idempotent
	assert.Zero(t, s.Len())
}
