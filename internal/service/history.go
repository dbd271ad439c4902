package service

import (
	"github.com/franoropeza/reportrunner/pkg/models"
	"github.com/franoropeza/reportrunner/pkg/storage"
)

// HistoryService exposes the recorded run history.
type HistoryService struct {
	store storage.Store
}

func NewHistoryService(store storage.Store) *HistoryService {
	return &HistoryService{store: store}
}

// ListRuns returns all recorded runs, newest first.
func (s *HistoryService) ListRuns() ([]models.Run, error) {
	return s.store.ListRuns()
}

// GetRun returns a single run by ID, or storage.ErrNotFound.
func (s *HistoryService) GetRun(id int64) (models.Run, error) {
	return s.store.GetRun(id)
}
