package library

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/models"
)

const maxObjectiveSnippet = 80

// AddHistory records a generation. The newest entry comes first and the list is
// capped at MaxHistory; the oldest entries fall off.
func (s *Service) AddHistory(ctx context.Context, id uuid.UUID, finalPrompt string, model models.Model, objective string) (*models.HistoryEntry, error) {
	info, _ := models.LookupModel(model)
	entry := models.HistoryEntry{
		ID:          uuid.New(),
		FinalPrompt: finalPrompt,
		Model:       info.Key,
		Objective:   truncate(strings.TrimSpace(objective), maxObjectiveSnippet),
	}

	err := s.withState(ctx, id, func(st *deviceState) error {
		entry.CreatedAt = s.now()
		st.history = pushHistory(st.history, entry)
		s.save(ctx, st, id, KeyHistory, st.history)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func pushHistory(history []models.HistoryEntry, e models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, 0, MaxHistory)
	out = append(out, e)
	for _, h := range history {
		if len(out) == MaxHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

func (s *Service) ListHistory(ctx context.Context, id uuid.UUID) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	err := s.withState(ctx, id, func(st *deviceState) error {
		out = append([]models.HistoryEntry{}, st.history...)
		return nil
	})
	return out, err
}

func (s *Service) ClearHistory(ctx context.Context, id uuid.UUID) error {
	return s.withState(ctx, id, func(st *deviceState) error {
		st.history = []models.HistoryEntry{}
		s.save(ctx, st, id, KeyHistory, st.history)
		return nil
	})
}
