package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"skill-swap/internal/config"
	"skill-swap/internal/domain/match"
	"skill-swap/internal/domain/matching"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/repository"

	"github.com/google/uuid"
)

type mockProfileRepo struct {
	profiles   map[uuid.UUID]user.Profile
	candidates map[uuid.UUID][]user.Profile
	similar    []user.Profile
	levels     map[uuid.UUID]map[string]skill.Level
	levelsErr  map[uuid.UUID]error
}

func (m *mockProfileRepo) GetByID(_ context.Context, id uuid.UUID) (user.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return user.Profile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) ListCandidates(_ context.Context, requester user.Profile, f repository.CandidateFilter, cap int) ([]user.Profile, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	out := m.candidates[requester.ID]
	if len(out) > cap {
		out = out[:cap]
	}
	return out, nil
}

func (m *mockProfileRepo) ListSimilar(_ context.Context, userID uuid.UUID, skills []string, limit int) ([]user.Profile, error) {
	if len(skills) == 0 {
		return nil, nil
	}
	out := m.similar
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockProfileRepo) GetSkillLevels(_ context.Context, userID uuid.UUID) (map[string]skill.Level, error) {
	if err := m.levelsErr[userID]; err != nil {
		return nil, err
	}
	return m.levels[userID], nil
}

// mockMatchRepo mirrors the postgres repository's unordered-pair semantics
// in memory.
type mockMatchRepo struct {
	byPair map[[2]uuid.UUID]*match.Record
	byID   map[uuid.UUID]*match.Record
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{
		byPair: make(map[[2]uuid.UUID]*match.Record),
		byID:   make(map[uuid.UUID]*match.Record),
	}
}

func (m *mockMatchRepo) CreateIfAbsent(_ context.Context, rec match.Record) (match.Record, error) {
	u1, u2 := match.CanonicalPair(rec.User1ID, rec.User2ID)
	key := [2]uuid.UUID{u1, u2}
	if existing, ok := m.byPair[key]; ok {
		return *existing, nil
	}

	rec.User1ID, rec.User2ID = u1, u2
	rec.ID = uuid.New()
	if rec.Status == "" {
		rec.Status = match.StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.ExpiresAt = rec.CreatedAt.Add(match.Lifetime)

	stored := rec
	m.byPair[key] = &stored
	m.byID[rec.ID] = &stored
	return stored, nil
}

func (m *mockMatchRepo) GetByID(_ context.Context, id uuid.UUID) (match.Record, error) {
	rec, ok := m.byID[id]
	if !ok {
		return match.Record{}, repository.ErrMatchNotFound
	}
	return *rec, nil
}

func (m *mockMatchRepo) ListByUser(_ context.Context, userID uuid.UUID, status *match.Status, limit int) ([]match.Record, error) {
	out := make([]match.Record, 0)
	for _, rec := range m.byID {
		if !rec.Involves(userID) {
			continue
		}
		if status != nil && rec.Status != *status {
			continue
		}
		out = append(out, *rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockMatchRepo) ListAcceptedInvolvingAny(_ context.Context, userIDs []uuid.UUID) ([]match.Record, error) {
	idSet := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		idSet[id] = struct{}{}
	}
	out := make([]match.Record, 0)
	for _, rec := range m.byID {
		if rec.Status != match.StatusAccepted {
			continue
		}
		_, ok1 := idSet[rec.User1ID]
		_, ok2 := idSet[rec.User2ID]
		if ok1 || ok2 {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) PartnerIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0)
	for _, rec := range m.byID {
		if other, err := rec.OtherUser(userID); err == nil {
			out = append(out, other)
		}
	}
	return out, nil
}

func (m *mockMatchRepo) UpdateInterest(_ context.Context, matchID, userID uuid.UUID, interested bool) (match.Record, error) {
	rec, ok := m.byID[matchID]
	if !ok {
		return match.Record{}, repository.ErrMatchNotFound
	}
	if err := rec.ApplyInterest(userID, interested); err != nil {
		return match.Record{}, repository.ErrMatchNotFound
	}
	return *rec, nil
}

func testScorer(t *testing.T) *matching.Scorer {
	t.Helper()
	s, err := matching.NewScorer(matching.DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return s
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		CandidateCap:      100,
		DefaultMatchLimit: 20,
		MaxMatchLimit:     50,
		SuggestionLimit:   10,
		SimilarUserFanout: 20,
	}
}

func TestFindMatches_RanksAndPersists(t *testing.T) {
	requester := user.Profile{
		ID:            uuid.New(),
		Active:        true,
		SkillsWanted:  []string{"Python"},
		SkillsOffered: []string{"Design"},
		Location:      "Berlin",
		Languages:     []string{"German"},
	}
	strong := user.Profile{
		ID:            uuid.New(),
		Active:        true,
		SkillsOffered: []string{"Python"},
		SkillsWanted:  []string{"Design"},
		Location:      "Berlin",
		Languages:     []string{"German"},
	}
	weak := user.Profile{
		ID:            uuid.New(),
		Active:        true,
		SkillsOffered: []string{"Python"},
		SkillsWanted:  []string{"Go"},
		Location:      "Tokyo",
	}

	profiles := &mockProfileRepo{
		profiles:   map[uuid.UUID]user.Profile{requester.ID: requester, strong.ID: strong, weak.ID: weak},
		candidates: map[uuid.UUID][]user.Profile{requester.ID: {weak, strong}},
	}
	matches := newMockMatchRepo()

	uc := NewMatchingUsecase(profiles, matches, testScorer(t), nil, nil, testMatchingConfig())
	results, err := uc.FindMatches(context.Background(), requester.ID, repository.CandidateFilter{}, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Profile.ID != strong.ID {
		t.Fatalf("expected strongest candidate first")
	}
	if results[0].Score < results[1].Score {
		t.Fatalf("results not sorted by score desc")
	}
	for _, r := range results {
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("score out of range: %f", r.Score)
		}
		if r.Match.ID == uuid.Nil {
			t.Fatalf("expected persisted match record")
		}
		if r.Match.Status != match.StatusPending {
			t.Fatalf("new match must be pending, got %s", r.Match.Status)
		}
		if r.Match.User1ID.String() > r.Match.User2ID.String() {
			t.Fatalf("stored pair not canonical: %s > %s", r.Match.User1ID, r.Match.User2ID)
		}
	}
	if len(results[0].Reasons) == 0 {
		t.Fatalf("expected reasons for strong candidate")
	}

	limited, err := uc.FindMatches(context.Background(), requester.ID, repository.CandidateFilter{}, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(limited) != 1 || limited[0].Profile.ID != strong.ID {
		t.Fatalf("expected limit to keep only the top match")
	}
}

func TestFindMatches_IdempotentBothDirections(t *testing.T) {
	a := user.Profile{ID: uuid.New(), Active: true, SkillsWanted: []string{"Python"}, SkillsOffered: []string{"Design"}}
	b := user.Profile{ID: uuid.New(), Active: true, SkillsOffered: []string{"Python"}, SkillsWanted: []string{"Design"}}

	profiles := &mockProfileRepo{
		profiles: map[uuid.UUID]user.Profile{a.ID: a, b.ID: b},
		candidates: map[uuid.UUID][]user.Profile{
			a.ID: {b},
			b.ID: {a},
		},
	}
	matches := newMockMatchRepo()
	uc := NewMatchingUsecase(profiles, matches, testScorer(t), nil, nil, testMatchingConfig())

	first, err := uc.FindMatches(context.Background(), a.ID, repository.CandidateFilter{}, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := uc.FindMatches(context.Background(), b.ID, repository.CandidateFilter{}, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one match each way, got %d and %d", len(first), len(second))
	}
	if first[0].Match.ID != second[0].Match.ID {
		t.Fatalf("expected the same record for both discovery directions")
	}
	if first[0].Match.CompatibilityScore != second[0].Match.CompatibilityScore {
		t.Fatalf("existing record's score must not change")
	}
	if len(matches.byID) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(matches.byID))
	}
}

func TestFindMatches_DiscardsNonMatches(t *testing.T) {
	requester := user.Profile{
		ID:           uuid.New(),
		Active:       true,
		SkillsWanted: []string{"Python"},
		Location:     "Tokyo",
		Languages:    []string{"Japanese"},
		Availability: map[string]string{"monday": "evening"},
		RatingSum:    2,
		RatingCount:  2,
	}
	// Everything mismatched and a three-level experience gap: lands at
	// 0.09, under the 0.1 cutoff.
	hopeless := user.Profile{
		ID:           uuid.New(),
		Active:       true,
		Location:     "Paris",
		Languages:    []string{"French"},
		Availability: map[string]string{"tuesday": "evening"},
		RatingSum:    1,
		RatingCount:  1,
	}

	profiles := &mockProfileRepo{
		profiles:   map[uuid.UUID]user.Profile{requester.ID: requester, hopeless.ID: hopeless},
		candidates: map[uuid.UUID][]user.Profile{requester.ID: {hopeless}},
		levels:     map[uuid.UUID]map[string]skill.Level{
			requester.ID: {"Python": skill.LevelBeginner},
			hopeless.ID:  {"Python": skill.LevelExpert},
		},
	}
	matches := newMockMatchRepo()
	uc := NewMatchingUsecase(profiles, matches, testScorer(t), nil, nil, testMatchingConfig())

	results, err := uc.FindMatches(context.Background(), requester.ID, repository.CandidateFilter{}, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d (score %f)", len(results), results[0].Score)
	}
	if len(matches.byID) != 0 {
		t.Fatalf("discarded candidates must not be persisted")
	}
}

func TestFindMatches_CandidateCapBoundsRetrieval(t *testing.T) {
	requester := user.Profile{ID: uuid.New(), Active: true, SkillsWanted: []string{"Python"}}
	pool := make([]user.Profile, 0, 5)
	all := map[uuid.UUID]user.Profile{requester.ID: requester}
	for i := 0; i < 5; i++ {
		c := user.Profile{ID: uuid.New(), Active: true, SkillsOffered: []string{"Python"}}
		pool = append(pool, c)
		all[c.ID] = c
	}

	profiles := &mockProfileRepo{
		profiles:   all,
		candidates: map[uuid.UUID][]user.Profile{requester.ID: pool},
	}
	cfg := testMatchingConfig()
	cfg.CandidateCap = 2
	uc := NewMatchingUsecase(profiles, newMockMatchRepo(), testScorer(t), nil, nil, cfg)

	results, err := uc.FindMatches(context.Background(), requester.ID, repository.CandidateFilter{}, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(results) > 2 {
		t.Fatalf("retrieval must be bounded by the candidate cap, got %d", len(results))
	}
}

func TestFindMatches_SkillLevelFetchErrorAborts(t *testing.T) {
	requester := user.Profile{ID: uuid.New(), Active: true, SkillsWanted: []string{"Python"}}
	broken := user.Profile{ID: uuid.New(), Active: true, SkillsOffered: []string{"Python"}}

	profiles := &mockProfileRepo{
		profiles:   map[uuid.UUID]user.Profile{requester.ID: requester, broken.ID: broken},
		candidates: map[uuid.UUID][]user.Profile{requester.ID: {broken}},
		levelsErr:  map[uuid.UUID]error{broken.ID: errors.New("store down")},
	}
	uc := NewMatchingUsecase(profiles, newMockMatchRepo(), testScorer(t), nil, nil, testMatchingConfig())

	_, err := uc.FindMatches(context.Background(), requester.ID, repository.CandidateFilter{}, 20)
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("a failed candidate fetch must abort the pass, got %v", err)
	}
}

func TestFindMatches_RequesterMissing(t *testing.T) {
	profiles := &mockProfileRepo{profiles: map[uuid.UUID]user.Profile{}}
	uc := NewMatchingUsecase(profiles, newMockMatchRepo(), testScorer(t), nil, nil, testMatchingConfig())

	_, err := uc.FindMatches(context.Background(), uuid.New(), repository.CandidateFilter{}, 20)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestFindMatches_InvalidFilter(t *testing.T) {
	requester := user.Profile{ID: uuid.New(), Active: true}
	profiles := &mockProfileRepo{profiles: map[uuid.UUID]user.Profile{requester.ID: requester}}
	uc := NewMatchingUsecase(profiles, newMockMatchRepo(), testScorer(t), nil, nil, testMatchingConfig())

	_, err := uc.FindMatches(context.Background(), requester.ID, repository.CandidateFilter{MinRating: 9}, 20)
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestUpdateMatchInterest_MutualAccept(t *testing.T) {
	matches := newMockMatchRepo()
	a, b := uuid.New(), uuid.New()
	rec, err := matches.CreateIfAbsent(context.Background(), match.Record{User1ID: a, User2ID: b})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	uc := NewMatchingUsecase(&mockProfileRepo{}, matches, testScorer(t), nil, nil, testMatchingConfig())

	updated, err := uc.UpdateMatchInterest(context.Background(), rec.ID, a, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != match.StatusPending {
		t.Fatalf("expected pending after one interest, got %s", updated.Status)
	}

	updated, err = uc.UpdateMatchInterest(context.Background(), rec.ID, b, true)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != match.StatusAccepted {
		t.Fatalf("expected accepted after mutual interest, got %s", updated.Status)
	}
}

type mockNotifier struct {
	accepted []uuid.UUID
}

func (n *mockNotifier) NotifyMatchAccepted(matchID, _, _ uuid.UUID, _ float64) {
	n.accepted = append(n.accepted, matchID)
}

func TestUpdateMatchInterest_NotifiesOnAcceptanceOnly(t *testing.T) {
	matches := newMockMatchRepo()
	a, b := uuid.New(), uuid.New()
	rec, err := matches.CreateIfAbsent(context.Background(), match.Record{User1ID: a, User2ID: b})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	notifier := &mockNotifier{}
	uc := NewMatchingUsecase(&mockProfileRepo{}, matches, testScorer(t), nil, notifier, testMatchingConfig())

	if _, err := uc.UpdateMatchInterest(context.Background(), rec.ID, a, true); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(notifier.accepted) != 0 {
		t.Fatalf("one-sided interest must not notify")
	}

	if _, err := uc.UpdateMatchInterest(context.Background(), rec.ID, b, true); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(notifier.accepted) != 1 || notifier.accepted[0] != rec.ID {
		t.Fatalf("expected one acceptance event for %s, got %v", rec.ID, notifier.accepted)
	}

	declined, err := matches.CreateIfAbsent(context.Background(), match.Record{User1ID: uuid.New(), User2ID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := uc.UpdateMatchInterest(context.Background(), declined.ID, declined.User1ID, false); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(notifier.accepted) != 1 {
		t.Fatalf("a decline must not notify")
	}
}

func TestUpdateMatchInterest_NotFound(t *testing.T) {
	uc := NewMatchingUsecase(&mockProfileRepo{}, newMockMatchRepo(), testScorer(t), nil, nil, testMatchingConfig())

	_, err := uc.UpdateMatchInterest(context.Background(), uuid.New(), uuid.New(), true)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestUpdateMatchInterest_NonParticipant(t *testing.T) {
	matches := newMockMatchRepo()
	rec, err := matches.CreateIfAbsent(context.Background(), match.Record{User1ID: uuid.New(), User2ID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	uc := NewMatchingUsecase(&mockProfileRepo{}, matches, testScorer(t), nil, nil, testMatchingConfig())

	_, err = uc.UpdateMatchInterest(context.Background(), rec.ID, uuid.New(), true)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound for outsider, got %v", err)
	}
}

func TestGetUserMatches_ReturnsOtherProfileAndReasons(t *testing.T) {
	a := user.Profile{ID: uuid.New(), Name: "Alice"}
	b := user.Profile{ID: uuid.New(), Name: "Bob"}

	matches := newMockMatchRepo()
	rec, err := matches.CreateIfAbsent(context.Background(), match.Record{
		User1ID: a.ID,
		User2ID: b.ID,
		AlgorithmData: match.AlgorithmData{
			Version:      match.AlgorithmVersion,
			MatchReasons: []string{"They can teach you: Python"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	profiles := &mockProfileRepo{profiles: map[uuid.UUID]user.Profile{a.ID: a, b.ID: b}}
	uc := NewMatchingUsecase(profiles, matches, testScorer(t), nil, nil, testMatchingConfig())

	items, err := uc.GetUserMatches(context.Background(), a.ID, nil, 20)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(items))
	}
	if items[0].OtherProfile.ID != b.ID {
		t.Fatalf("expected the other side's profile")
	}
	if items[0].Match.ID != rec.ID {
		t.Fatalf("unexpected match id")
	}
	if len(items[0].Reasons) != 1 {
		t.Fatalf("expected stored reasons, got %v", items[0].Reasons)
	}
}
