package user

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRating is assumed for users with no ratings yet.
const DefaultRating = 3.0

type Profile struct {
	ID            uuid.UUID
	Email         string
	Name          string
	Active        bool
	SkillsOffered []string
	SkillsWanted  []string
	Location      string
	Languages     []string
	Availability  map[string]string
	RatingSum     float64
	RatingCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Profile) AverageRating() float64 {
	if p.RatingCount <= 0 {
		return DefaultRating
	}
	return p.RatingSum / float64(p.RatingCount)
}

// CombinedSkills is the union of offered and wanted skills, deduplicated,
// preserving first-seen order.
func (p Profile) CombinedSkills() []string {
	seen := make(map[string]struct{}, len(p.SkillsOffered)+len(p.SkillsWanted))
	out := make([]string, 0, len(p.SkillsOffered)+len(p.SkillsWanted))
	for _, s := range p.SkillsOffered {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range p.SkillsWanted {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
