package storage

import (
	"time"

	"github.com/franoropeza/reportrunner/pkg/models"
	"github.com/pkg/errors"
)

// mockStore implements storage.Store with in-memory storage
type mockStore struct {
	runs      []models.Run
	nextID    int64 // For run IDs
	committed bool  // Transaction state
}

func NewMockStore() Store {
	return &mockStore{}
}

func (m *mockStore) Begin() (Store, error) {
	// Fresh transaction state; changes are applied directly
	m.committed = false
	return m, nil
}

func (m *mockStore) Commit() error {
	if m.committed {
		return errors.New("already committed")
	}
	m.committed = true
	return nil
}

func (m *mockStore) Rollback() error {
	if m.committed {
		return errors.New("cannot rollback committed transaction")
	}
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) SaveRun(r models.Run) (int64, error) {
	m.nextID++
	r.ID = m.nextID
	m.runs = append(m.runs, r)
	return r.ID, nil
}

func (m *mockStore) GetRun(id int64) (models.Run, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Run{}, ErrNotFound
}

func (m *mockStore) FinishRun(id int64, status models.RunStatus, exitCode int) error {
	for i, r := range m.runs {
		if r.ID == id {
			now := time.Now()
			code := exitCode
			m.runs[i].Status = status
			m.runs[i].ExitCode = &code
			m.runs[i].FinishedAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockStore) ListRuns() ([]models.Run, error) {
	return m.runs, nil
}
