// Package store provides the in-process registries for video records and
// conversation sessions. Both are explicitly constructed and injected into
// handlers so tests can instantiate isolated instances; contents are lost
// on restart.
package store

import (
	"sync"

	"github.com/gameplay-insights/backend/internal/models"
)

// VideoStore is a process-lifetime registry of video records.
type VideoStore struct {
	mu     sync.RWMutex
	videos map[string]*models.VideoRecord
}

// NewVideoStore creates an empty video registry.
func NewVideoStore() *VideoStore {
	return &VideoStore{videos: make(map[string]*models.VideoRecord)}
}

// Put inserts or replaces a video record.
func (s *VideoStore) Put(rec *models.VideoRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[rec.VideoID] = rec
}

// Get returns a copy of the record, or nil if unknown. Callers mutate the
// copy and write it back via Put or Update.
func (s *VideoStore) Get(videoID string) *models.VideoRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.videos[videoID]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// Update applies fn to the record under the lock. Returns false if unknown.
func (s *VideoStore) Update(videoID string, fn func(*models.VideoRecord)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.videos[videoID]
	if !ok {
		return false
	}
	fn(rec)
	return true
}

// List returns copies of all records, optionally filtered by status.
// limit <= 0 means no limit.
func (s *VideoStore) List(statusFilter string, limit int) []*models.VideoRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.VideoRecord, 0, len(s.videos))
	for _, rec := range s.videos {
		if statusFilter != "" && rec.Status != statusFilter {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len returns the number of tracked videos.
func (s *VideoStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}
