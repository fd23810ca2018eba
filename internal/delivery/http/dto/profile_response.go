package dto

import (
	"github.com/google/uuid"

	"skill-swap/internal/domain/user"
)

type ProfileResponse struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Location      string            `json:"location,omitempty"`
	SkillsOffered []string          `json:"skills_offered"`
	SkillsWanted  []string          `json:"skills_wanted"`
	Languages     []string          `json:"languages,omitempty"`
	Availability  map[string]string `json:"availability,omitempty"`
	AverageRating float64           `json:"average_rating"`
	RatingCount   int               `json:"rating_count"`
}

func NewProfileResponse(p user.Profile) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		Name:          p.Name,
		Location:      p.Location,
		SkillsOffered: emptyIfNil(p.SkillsOffered),
		SkillsWanted:  emptyIfNil(p.SkillsWanted),
		Languages:     p.Languages,
		Availability:  p.Availability,
		AverageRating: p.AverageRating(),
		RatingCount:   p.RatingCount,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
