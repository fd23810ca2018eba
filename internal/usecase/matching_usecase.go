package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"skill-swap/internal/config"
	"skill-swap/internal/domain/match"
	"skill-swap/internal/domain/matching"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// scoreConcurrency bounds the parallel per-candidate scoring fan-out.
const scoreConcurrency = 8

type MatchResult struct {
	Match   match.Record
	Profile user.Profile
	Score   float64
	Reasons []string
}

type UserMatch struct {
	Match        match.Record
	OtherProfile user.Profile
	Reasons      []string
}

type MatchingUsecase interface {
	FindMatches(ctx context.Context, userID uuid.UUID, f repository.CandidateFilter, limit int) ([]MatchResult, error)
	GetUserMatches(ctx context.Context, userID uuid.UUID, status *match.Status, limit int) ([]UserMatch, error)
	UpdateMatchInterest(ctx context.Context, matchID, userID uuid.UUID, interested bool) (match.Record, error)
}

// MatchNotifier pushes match lifecycle events to connected participants,
// satisfied by the websocket hub. A nil notifier disables push.
type MatchNotifier interface {
	NotifyMatchAccepted(matchID, user1ID, user2ID uuid.UUID, score float64)
}

type Matching struct {
	profiles repository.ProfileRepository
	matches  repository.MatchRepository
	scorer   *matching.Scorer
	cache    SuggestionCache
	notifier MatchNotifier
	cfg      config.MatchingConfig
}

func NewMatchingUsecase(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	scorer *matching.Scorer,
	cache SuggestionCache,
	notifier MatchNotifier,
	cfg config.MatchingConfig,
) *Matching {
	return &Matching{profiles: profiles, matches: matches, scorer: scorer, cache: cache, notifier: notifier, cfg: cfg}
}

func (u *Matching) FindMatches(ctx context.Context, userID uuid.UUID, f repository.CandidateFilter, limit int) ([]MatchResult, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if err := f.Validate(); err != nil {
		return nil, ErrInvalidFilter
	}
	limit = u.normalizeLimit(limit)

	requester, err := u.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, ErrInternal
	}

	requesterLevels, err := u.profiles.GetSkillLevels(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	cap := u.cfg.CandidateCap
	if cap <= 0 {
		cap = 100
	}
	candidates, err := u.profiles.ListCandidates(ctx, requester, f, cap)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidFilter) {
			return nil, ErrInvalidFilter
		}
		return nil, ErrInternal
	}

	// Scoring is pure per candidate, so it parallelizes cleanly. Any failed
	// skill-level fetch aborts the whole pass rather than silently skipping
	// a candidate.
	scored := make([]MatchResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i, c := range candidates {
		g.Go(func() error {
			candidateLevels, err := u.profiles.GetSkillLevels(gctx, c.ID)
			if err != nil {
				return err
			}
			res := u.scorer.Score(requester, c, requesterLevels, candidateLevels)
			scored[i] = MatchResult{Profile: c, Score: res.Score, Reasons: res.Reasons}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ErrInternal
	}

	kept := make([]MatchResult, 0, len(scored))
	for _, r := range scored {
		if r.Score > matching.MinMatchScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}

	for i := range kept {
		rec, err := u.matches.CreateIfAbsent(ctx, newRecord(requester, kept[i]))
		if err != nil {
			return nil, ErrInternal
		}
		kept[i].Match = rec
	}

	return kept, nil
}

func (u *Matching) GetUserMatches(ctx context.Context, userID uuid.UUID, status *match.Status, limit int) ([]UserMatch, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	limit = u.normalizeLimit(limit)

	records, err := u.matches.ListByUser(ctx, userID, status, limit)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]UserMatch, 0, len(records))
	for _, rec := range records {
		otherID, err := rec.OtherUser(userID)
		if err != nil {
			return nil, ErrInternal
		}
		other, err := u.profiles.GetByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, ErrInternal
		}
		out = append(out, UserMatch{
			Match:        rec,
			OtherProfile: other,
			Reasons:      rec.AlgorithmData.MatchReasons,
		})
	}
	return out, nil
}

func (u *Matching) UpdateMatchInterest(ctx context.Context, matchID, userID uuid.UUID, interested bool) (match.Record, error) {
	if userID == uuid.Nil {
		return match.Record{}, ErrUnauthorized
	}
	if matchID == uuid.Nil {
		return match.Record{}, ErrMatchNotFound
	}

	rec, err := u.matches.UpdateInterest(ctx, matchID, userID, interested)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, ErrInternal
	}

	// The accepted-match graph feeds suggestions, so both sides' cached
	// suggestion lists are stale after any decision.
	if u.cache != nil {
		_ = u.cache.Delete(ctx, suggestionCacheKey(rec.User1ID))
		_ = u.cache.Delete(ctx, suggestionCacheKey(rec.User2ID))
	}

	if rec.Status == match.StatusAccepted && u.notifier != nil {
		u.notifier.NotifyMatchAccepted(rec.ID, rec.User1ID, rec.User2ID, rec.CompatibilityScore)
	}

	return rec, nil
}

func (u *Matching) normalizeLimit(limit int) int {
	def := u.cfg.DefaultMatchLimit
	if def <= 0 {
		def = 20
	}
	max := u.cfg.MaxMatchLimit
	if max <= 0 {
		max = 50
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func newRecord(requester user.Profile, r MatchResult) match.Record {
	offered := sharedSkills(r.Profile.SkillsWanted, requester.SkillsOffered)
	wanted := sharedSkills(requester.SkillsWanted, r.Profile.SkillsOffered)

	return match.Record{
		User1ID:             requester.ID,
		User2ID:             r.Profile.ID,
		SkillOfferedSummary: offered,
		SkillWantedSummary:  wanted,
		CompatibilityScore:  r.Score,
		Status:              match.StatusPending,
		AlgorithmData: match.AlgorithmData{
			Version:      match.AlgorithmVersion,
			MatchReasons: r.Reasons,
		},
	}
}

func sharedSkills(wanted, offered []string) string {
	set := make(map[string]struct{}, len(offered))
	for _, s := range offered {
		set[s] = struct{}{}
	}
	common := make([]string, 0)
	for _, s := range wanted {
		if _, ok := set[s]; ok {
			common = append(common, s)
		}
	}
	sort.Strings(common)
	return strings.Join(common, ", ")
}
