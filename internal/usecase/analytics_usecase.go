package usecase

import (
	"context"
	"time"

	"skill-swap/internal/domain/match"
	"skill-swap/internal/repository"

	"github.com/google/uuid"
)

type AnalyticsSummary struct {
	Total                int
	Accepted             int
	Pending              int
	Declined             int
	Expired              int
	AcceptanceRate       float64
	AverageCompatibility float64
	LastMatchDate        *time.Time
}

type AnalyticsUsecase interface {
	GetAnalytics(ctx context.Context, userID uuid.UUID) (AnalyticsSummary, error)
}

type Analytics struct {
	matches repository.MatchRepository
}

func NewAnalyticsUsecase(matches repository.MatchRepository) *Analytics {
	return &Analytics{matches: matches}
}

// GetAnalytics aggregates the user's full match history. Pure read, no side
// effects; a user with no matches gets an all-zero summary.
func (u *Analytics) GetAnalytics(ctx context.Context, userID uuid.UUID) (AnalyticsSummary, error) {
	if userID == uuid.Nil {
		return AnalyticsSummary{}, ErrUnauthorized
	}

	records, err := u.matches.ListByUser(ctx, userID, nil, 0)
	if err != nil {
		return AnalyticsSummary{}, ErrInternal
	}

	var s AnalyticsSummary
	var scoreSum float64
	var last time.Time
	for _, rec := range records {
		s.Total++
		scoreSum += rec.CompatibilityScore
		switch rec.Status {
		case match.StatusAccepted:
			s.Accepted++
		case match.StatusPending:
			s.Pending++
		case match.StatusDeclined:
			s.Declined++
		case match.StatusExpired:
			s.Expired++
		}
		if rec.CreatedAt.After(last) {
			last = rec.CreatedAt
		}
	}

	if s.Total > 0 {
		s.AcceptanceRate = float64(s.Accepted) / float64(s.Total)
		s.AverageCompatibility = scoreSum / float64(s.Total)
		s.LastMatchDate = &last
	}
	return s, nil
}
