package service

import (
	"context"
	"strings"

	"reelroom/internal/featureflags"
	"reelroom/internal/models"
	"reelroom/internal/repository"
)

type SearchService struct {
	userRepo repository.UserRepository
	flags    *featureflags.Manager
}

func NewSearchService(userRepo repository.UserRepository, flags *featureflags.Manager) *SearchService {
	return &SearchService{userRepo: userRepo, flags: flags}
}

// SearchUsers matches query case-insensitively against full name and
// username. Both must match unless search_match_any is enabled for actorID,
// in which case either may. A blank query matches nobody.
func (s *SearchService) SearchUsers(ctx context.Context, actorID uint, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserSummary{}, nil
	}
	matchAny := s.flags.Enabled(featureflags.SearchMatchAny, actorID)

	users, err := s.userRepo.Search(ctx, query, matchAny)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, len(users))
	for i := range users {
		out[i] = users[i].Summary()
	}
	return out, nil
}
