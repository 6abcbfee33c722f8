package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/mockwise/internal/model"
)

// Memory is an in-process Store used for tests and throwaway sessions.
type Memory struct {
	mu         sync.RWMutex
	answers    []model.AnswerRecord
	interviews map[string]model.Interview
	now        func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		interviews: make(map[string]model.Interview),
		now:        time.Now,
	}
}

func (m *Memory) FindAnswers(_ context.Context, filter AnswerFilter) ([]model.AnswerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.AnswerRecord
	for i := range m.answers {
		if filter.matches(&m.answers[i]) {
			out = append(out, m.answers[i])
		}
	}
	return out, nil
}

func (m *Memory) InsertAnswer(_ context.Context, rec model.AnswerRecord) (model.AnswerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = m.now().UTC()
	m.answers = append(m.answers, rec)
	return rec, nil
}

func (m *Memory) CreateInterview(_ context.Context, in model.Interview) (model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in.ID = uuid.NewString()
	in.CreatedAt = m.now().UTC()
	in.UpdatedAt = time.Time{}
	m.interviews[in.ID] = in
	return in, nil
}

func (m *Memory) GetInterview(_ context.Context, id string) (model.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	in, ok := m.interviews[id]
	if !ok {
		return model.Interview{}, fmt.Errorf("interview %q: %w", id, ErrNotFound)
	}
	return in, nil
}

func (m *Memory) UpdateInterview(_ context.Context, in model.Interview) (model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.interviews[in.ID]
	if !ok {
		return model.Interview{}, fmt.Errorf("interview %q: %w", in.ID, ErrNotFound)
	}

	in.UserID = existing.UserID
	in.CreatedAt = existing.CreatedAt
	in.UpdatedAt = m.now().UTC()
	m.interviews[in.ID] = in
	return in, nil
}

func (m *Memory) DeleteInterview(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.interviews[id]; !ok {
		return fmt.Errorf("interview %q: %w", id, ErrNotFound)
	}
	delete(m.interviews, id)
	return nil
}

func (m *Memory) ListInterviews(_ context.Context, userID string) ([]model.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Interview
	for _, in := range m.interviews {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) Close() error { return nil }
