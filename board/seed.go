package board

import (
	"context"

	"github.com/google/uuid"

	"laughschool/models"
)

// SeedDemo inserts starter content when the store is empty, so a fresh
// deployment has something on the feed. Already-populated stores are left
// alone.
func (s *Service) SeedDemo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return nil
	}

	seed := []models.Item{
		{
			ID:        uuid.NewString(),
			Type:      models.TypeImage,
			Title:     "When the code compiles first try",
			CreatedAt: s.timestamp(),
			Approved:  true,
			Laughs:    7,
			Media: &models.Media{
				Caption:     "Senior dev energy.",
				URL:         "https://placehold.co/1280x720?text=Laugh+School",
				ContentType: "image/png",
			},
		},
		{
			ID:        uuid.NewString(),
			Type:      models.TypePoll,
			Title:     "Best reaction emoji?",
			CreatedAt: s.timestamp(),
			Approved:  true,
			Laughs:    3,
			Poll: &models.Poll{
				Question: "Pick your go-to reaction",
				Options: []models.Option{
					{Text: "😂", Votes: 12},
					{Text: "🤣", Votes: 8},
					{Text: "😹", Votes: 3},
				},
				TotalVotes: 23,
			},
		},
	}
	for _, item := range seed {
		if err := s.store.Put(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
