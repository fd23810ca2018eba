package dto

import "skill-swap/internal/usecase"

type SuggestionResponse struct {
	Profile ProfileResponse `json:"profile"`
	Score   float64         `json:"score"`
	Reason  string          `json:"reason"`
}

func NewSuggestionResponse(s usecase.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		Profile: NewProfileResponse(s.Profile),
		Score:   s.Score,
		Reason:  s.Reason,
	}
}
