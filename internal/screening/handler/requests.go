package handler

import (
	"strings"
	"time"

	dErrors "vigil/pkg/domain-errors"
)

// CheckRequest is the HTTP request body for POST /screening/check.
type CheckRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 512 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 512 characters")
	}

	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	if r.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
			return dErrors.New(dErrors.CodeValidation, "date_of_birth must be an ISO date (YYYY-MM-DD)")
		}
	}

	r.CountryCode = strings.ToUpper(strings.TrimSpace(r.CountryCode))
	if r.CountryCode != "" && len(r.CountryCode) != 2 {
		return dErrors.New(dErrors.CodeValidation, "country_code must be a two-letter ISO code")
	}

	return nil
}
