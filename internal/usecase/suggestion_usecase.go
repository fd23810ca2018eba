package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"skill-swap/internal/config"
	"skill-swap/internal/domain/matching"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/repository"

	"github.com/google/uuid"
)

// SuggestionCache is the slice of the redis cache the suggestion pipeline
// needs. A nil cache disables caching entirely.
type SuggestionCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Suggestion struct {
	Profile user.Profile `json:"profile"`
	Score   float64      `json:"score"`
	Reason  string       `json:"reason"`
}

type SuggestionUsecase interface {
	GetSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]Suggestion, error)
}

// SuggestionEngine recommends candidates two hops away: users similar to the
// requester are found by skill overlap, their accepted matches are walked,
// and the third parties on the far side are re-scored for the requester.
// Deterministic over the stored match graph, no model involved.
type SuggestionEngine struct {
	profiles repository.ProfileRepository
	matches  repository.MatchRepository
	scorer   *matching.Scorer
	cache    SuggestionCache
	cfg      config.MatchingConfig
}

func NewSuggestionEngine(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	scorer *matching.Scorer,
	cache SuggestionCache,
	cfg config.MatchingConfig,
) *SuggestionEngine {
	return &SuggestionEngine{profiles: profiles, matches: matches, scorer: scorer, cache: cache, cfg: cfg}
}

func (u *SuggestionEngine) GetSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]Suggestion, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = u.cfg.SuggestionLimit
	}
	if limit <= 0 {
		limit = 10
	}

	key := suggestionCacheKey(userID)
	if u.cache != nil {
		var cached []Suggestion
		if ok, err := u.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	requester, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, ErrInternal
	}

	fanout := u.cfg.SimilarUserFanout
	if fanout <= 0 {
		fanout = 20
	}
	similar, err := u.profiles.ListSimilar(ctx, userID, requester.CombinedSkills(), fanout)
	if err != nil {
		return nil, ErrInternal
	}
	if len(similar) == 0 {
		return []Suggestion{}, nil
	}

	// Users the requester already has any match with are never suggested
	// again, whatever the match status.
	partnerIDs, err := u.matches.PartnerIDs(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	excluded := make(map[uuid.UUID]struct{}, len(partnerIDs)+1)
	excluded[userID] = struct{}{}
	for _, id := range partnerIDs {
		excluded[id] = struct{}{}
	}

	similarSet := make(map[uuid.UUID]struct{}, len(similar))
	similarIDs := make([]uuid.UUID, 0, len(similar))
	for _, s := range similar {
		similarSet[s.ID] = struct{}{}
		similarIDs = append(similarIDs, s.ID)
	}
	accepted, err := u.matches.ListAcceptedInvolvingAny(ctx, similarIDs)
	if err != nil {
		return nil, ErrInternal
	}

	// Only the participant opposite the similar side is a candidate; the
	// similar users themselves are the bridge, not the recommendation.
	candidateIDs := make([]uuid.UUID, 0, len(accepted))
	seen := make(map[uuid.UUID]struct{}, len(accepted))
	for _, rec := range accepted {
		pairs := [][2]uuid.UUID{{rec.User1ID, rec.User2ID}, {rec.User2ID, rec.User1ID}}
		for _, p := range pairs {
			bridge, other := p[0], p[1]
			if _, ok := similarSet[bridge]; !ok {
				continue
			}
			if _, skip := excluded[other]; skip {
				continue
			}
			if _, dup := seen[other]; dup {
				continue
			}
			seen[other] = struct{}{}
			candidateIDs = append(candidateIDs, other)
		}
	}

	requesterLevels, err := u.profiles.GetSkillLevels(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	best := make(map[uuid.UUID]Suggestion, len(candidateIDs))
	for _, id := range candidateIDs {
		candidate, err := u.profiles.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, ErrInternal
		}
		if !candidate.Active {
			continue
		}
		candidateLevels, err := u.profiles.GetSkillLevels(ctx, id)
		if err != nil {
			return nil, ErrInternal
		}

		res := u.scorer.Score(requester, candidate, requesterLevels, candidateLevels)
		if res.Score <= matching.MinMatchScore {
			continue
		}
		if prev, ok := best[id]; ok && prev.Score >= res.Score {
			continue
		}
		best[id] = Suggestion{
			Profile: candidate,
			Score:   res.Score,
			Reason:  suggestionReason(res.Reasons),
		}
	}

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Profile.ID.String() < out[j].Profile.ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}

	if u.cache != nil {
		ttl := u.cfg.SuggestionCacheTTL
		if ttl <= 0 {
			ttl = 60 * time.Second
		}
		_ = u.cache.SetJSON(ctx, key, out, ttl)
	}

	return out, nil
}

func suggestionReason(reasons []string) string {
	if len(reasons) > 0 {
		return reasons[0]
	}
	return "Popular with users who share your skills"
}

func suggestionCacheKey(userID uuid.UUID) string {
	return "suggestions:" + userID.String()
}
