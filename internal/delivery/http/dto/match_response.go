package dto

import (
	"time"

	"github.com/google/uuid"

	"skill-swap/internal/usecase"
)

type FoundMatchResponse struct {
	MatchID uuid.UUID       `json:"match_id"`
	Profile ProfileResponse `json:"profile"`
	Score   float64         `json:"score"`
	Reasons []string        `json:"reasons"`
	Status  string          `json:"status"`
}

func NewFoundMatchResponse(r usecase.MatchResult) FoundMatchResponse {
	return FoundMatchResponse{
		MatchID: r.Match.ID,
		Profile: NewProfileResponse(r.Profile),
		Score:   r.Score,
		Reasons: emptyIfNil(r.Reasons),
		Status:  string(r.Match.Status),
	}
}

type UserMatchResponse struct {
	MatchID             uuid.UUID       `json:"match_id"`
	OtherProfile        ProfileResponse `json:"other_profile"`
	SkillOfferedSummary string          `json:"skill_offered_summary"`
	SkillWantedSummary  string          `json:"skill_wanted_summary"`
	CompatibilityScore  float64         `json:"compatibility_score"`
	Status              string          `json:"status"`
	Reasons             []string        `json:"reasons"`
	CreatedAt           time.Time       `json:"created_at"`
	ExpiresAt           time.Time       `json:"expires_at"`
}

func NewUserMatchResponse(m usecase.UserMatch) UserMatchResponse {
	return UserMatchResponse{
		MatchID:             m.Match.ID,
		OtherProfile:        NewProfileResponse(m.OtherProfile),
		SkillOfferedSummary: m.Match.SkillOfferedSummary,
		SkillWantedSummary:  m.Match.SkillWantedSummary,
		CompatibilityScore:  m.Match.CompatibilityScore,
		Status:              string(m.Match.Status),
		Reasons:             emptyIfNil(m.Reasons),
		CreatedAt:           m.Match.CreatedAt,
		ExpiresAt:           m.Match.ExpiresAt,
	}
}

type UpdateInterestRequest struct {
	Interested *bool `json:"interested"`
}

type UpdateInterestResponse struct {
	MatchID       uuid.UUID `json:"match_id"`
	Status        string    `json:"status"`
	User1Interest bool      `json:"user1_interest"`
	User2Interest bool      `json:"user2_interest"`
}
