package dto

import (
	"time"

	"skill-swap/internal/usecase"
)

type AnalyticsResponse struct {
	Total                int        `json:"total"`
	Accepted             int        `json:"accepted"`
	Pending              int        `json:"pending"`
	Declined             int        `json:"declined"`
	Expired              int        `json:"expired"`
	AcceptanceRate       float64    `json:"acceptance_rate"`
	AverageCompatibility float64    `json:"average_compatibility"`
	LastMatchDate        *time.Time `json:"last_match_date,omitempty"`
}

func NewAnalyticsResponse(s usecase.AnalyticsSummary) AnalyticsResponse {
	return AnalyticsResponse{
		Total:                s.Total,
		Accepted:             s.Accepted,
		Pending:              s.Pending,
		Declined:             s.Declined,
		Expired:              s.Expired,
		AcceptanceRate:       s.AcceptanceRate,
		AverageCompatibility: s.AverageCompatibility,
		LastMatchDate:        s.LastMatchDate,
	}
}
