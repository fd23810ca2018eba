package matching

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
)

// MinMatchScore is the discard threshold: pairs scoring at or below it are
// not considered matches by callers.
const MinMatchScore = 0.1

// bidirectionalBonus multiplies the skill factor when both users have
// something the other wants.
const bidirectionalBonus = 1.5

var ErrInvalidWeights = errors.New("factor weights must be non-negative and sum to 1.0")

// Weights is the immutable factor weighting for one Scorer. The six weights
// must sum to 1.0 so the combined score stays in [0,1].
type Weights struct {
	SkillMatch   float64
	Experience   float64
	Location     float64
	Language     float64
	Availability float64
	Reputation   float64
}

func DefaultWeights() Weights {
	return Weights{
		SkillMatch:   0.4,
		Experience:   0.2,
		Location:     0.1,
		Language:     0.1,
		Availability: 0.1,
		Reputation:   0.1,
	}
}

func (w Weights) Validate() error {
	vals := []float64{w.SkillMatch, w.Experience, w.Location, w.Language, w.Availability, w.Reputation}
	sum := 0.0
	for _, v := range vals {
		if v < 0 {
			return ErrInvalidWeights
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return ErrInvalidWeights
	}
	return nil
}

// Factors holds the six per-pair sub-scores, each in [0,1].
type Factors struct {
	SkillMatch   float64
	Experience   float64
	Location     float64
	Language     float64
	Availability float64
	Reputation   float64
}

type Result struct {
	Score   float64
	Factors Factors
	Reasons []string
}

type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Score computes the weighted compatibility of a and b. The factor formulas
// are symmetric, so Score(a, b) and Score(b, a) produce the same score;
// reasons are phrased from a's perspective.
func (s *Scorer) Score(a, b user.Profile, levelsA, levelsB map[string]skill.Level) Result {
	f := Factors{
		SkillMatch:   skillMatchFactor(a, b),
		Experience:   experienceFactor(levelsA, levelsB),
		Location:     locationFactor(a.Location, b.Location),
		Language:     languageFactor(a.Languages, b.Languages),
		Availability: availabilityFactor(a.Availability, b.Availability),
		Reputation:   reputationFactor(a, b),
	}

	total := f.SkillMatch*s.weights.SkillMatch +
		f.Experience*s.weights.Experience +
		f.Location*s.weights.Location +
		f.Language*s.weights.Language +
		f.Availability*s.weights.Availability +
		f.Reputation*s.weights.Reputation

	return Result{
		Score:   clamp(total),
		Factors: f,
		Reasons: buildReasons(a, b),
	}
}

func skillMatchFactor(a, b user.Profile) float64 {
	theyTeach := intersect(a.SkillsWanted, b.SkillsOffered)
	youTeach := intersect(b.SkillsWanted, a.SkillsOffered)

	denom := len(a.SkillsWanted)
	if len(b.SkillsWanted) > denom {
		denom = len(b.SkillsWanted)
	}
	if denom == 0 {
		return 0
	}

	base := float64(len(theyTeach)+len(youTeach)) / float64(denom)
	if len(theyTeach) > 0 && len(youTeach) > 0 {
		base *= bidirectionalBonus
	}
	return clamp(base)
}

// experienceFactor rewards a one-or-two level gap as the ideal
// teacher/learner pairing. Same level is workable but less complementary.
func experienceFactor(levelsA, levelsB map[string]skill.Level) float64 {
	if len(levelsA) == 0 || len(levelsB) == 0 {
		return 0.5
	}

	var sum float64
	var shared int
	for name, la := range levelsA {
		lb, ok := levelsB[name]
		if !ok {
			continue
		}
		shared++
		diff := la.Ordinal() - lb.Ordinal()
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 1:
			sum += 1.0
		case 2:
			sum += 0.8
		case 0:
			sum += 0.6
		default:
			sum += 0.3
		}
	}
	if shared == 0 {
		return 0.7
	}
	return sum / float64(shared)
}

func locationFactor(locA, locB string) float64 {
	locA = strings.TrimSpace(locA)
	locB = strings.TrimSpace(locB)
	if locA == "" || locB == "" {
		return 0.5
	}
	if strings.EqualFold(locA, locB) {
		return 1.0
	}

	tokensA := strings.Fields(strings.ToLower(locA))
	tokensB := strings.Fields(strings.ToLower(locB))
	common := len(intersect(tokensA, tokensB))
	if common == 0 {
		return 0.2
	}

	denom := len(tokensA)
	if len(tokensB) > denom {
		denom = len(tokensB)
	}
	return clamp(float64(common) / float64(denom))
}

func languageFactor(langsA, langsB []string) float64 {
	if len(langsA) == 0 || len(langsB) == 0 {
		return 0.5
	}
	common := len(intersectFold(langsA, langsB))
	if common == 0 {
		return 0.1
	}
	denom := len(langsA)
	if len(langsB) > denom {
		denom = len(langsB)
	}
	return clamp(float64(common) / float64(denom))
}

func availabilityFactor(availA, availB map[string]string) float64 {
	if len(availA) == 0 || len(availB) == 0 {
		return 0.5
	}
	shared := 0
	for day := range availA {
		if _, ok := availB[day]; ok {
			shared++
		}
	}
	return clamp(float64(shared) / 7.0)
}

func reputationFactor(a, b user.Profile) float64 {
	normA := (a.AverageRating() - 1) / 4
	normB := (b.AverageRating() - 1) / 4
	return clamp((normA + normB) / 2)
}

// buildReasons restates the intersections behind the factors as short
// display strings, from a's perspective. It never recomputes scores.
func buildReasons(a, b user.Profile) []string {
	reasons := make([]string, 0, 6)

	theyTeach := intersect(a.SkillsWanted, b.SkillsOffered)
	youTeach := intersect(b.SkillsWanted, a.SkillsOffered)

	if len(theyTeach) > 0 {
		sort.Strings(theyTeach)
		reasons = append(reasons, "They can teach you: "+strings.Join(theyTeach, ", "))
	}
	if len(youTeach) > 0 {
		sort.Strings(youTeach)
		reasons = append(reasons, "You can teach them: "+strings.Join(youTeach, ", "))
	}
	if len(theyTeach) > 0 && len(youTeach) > 0 {
		reasons = append(reasons, "Perfect skill exchange match!")
	}

	if a.Location != "" && b.Location != "" && strings.EqualFold(strings.TrimSpace(a.Location), strings.TrimSpace(b.Location)) {
		reasons = append(reasons, "You're both in "+strings.TrimSpace(b.Location))
	}

	if langs := intersectFold(a.Languages, b.Languages); len(langs) > 0 {
		sort.Strings(langs)
		reasons = append(reasons, "You both speak: "+strings.Join(langs, ", "))
	}

	if b.RatingCount > 0 && b.AverageRating() >= 4.5 {
		reasons = append(reasons, "Highly rated teacher")
	}

	if len(a.Availability) > 0 && len(b.Availability) > 0 {
		shared := 0
		for day := range a.Availability {
			if _, ok := b.Availability[day]; ok {
				shared++
			}
		}
		if shared >= 3 {
			reasons = append(reasons, fmt.Sprintf("Your schedules overlap on %d days", shared))
		}
	}

	return reasons
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0)
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func intersectFold(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[strings.ToLower(s)] = struct{}{}
	}
	out := make([]string, 0)
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := set[key]; ok {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
