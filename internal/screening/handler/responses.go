package handler

import (
	"vigil/internal/screening"
)

// CheckResponse is the HTTP response for POST /screening/check. Outcome is
// the classification of the best match, CLEAR when there are none.
type CheckResponse struct {
	Outcome string                  `json:"outcome"`
	Matches []screening.ScoredMatch `json:"matches"`
}

// FromMatches converts scored matches to an HTTP response.
func FromMatches(matches []screening.ScoredMatch) *CheckResponse {
	outcome := string(screening.ClassificationClear)
	if len(matches) > 0 {
		outcome = string(matches[0].Classification)
	}
	return &CheckResponse{
		Outcome: outcome,
		Matches: matches,
	}
}
