package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
)

// SubmitProfileRequest defines the payload for the profile submission endpoint.
type SubmitProfileRequest struct {
	Name            string `json:"name"             validate:"required,max=200"`
	Email           string `json:"email"            validate:"required,email,max=254"`
	InstitutionalID string `json:"institutional_id" validate:"required,max=64"`
	Major           string `json:"major"            validate:"required,major"`
	GraduationYear  int    `json:"graduation_year"  validate:"required,graduation_year"`
}

// trimSpace strips surrounding whitespace from every string field so that
// padded input is validated the same way the domain stores it.
func (r *SubmitProfileRequest) trimSpace() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.InstitutionalID = strings.TrimSpace(r.InstitutionalID)
	r.Major = strings.TrimSpace(r.Major)
}

// ToInput converts the request into the domain input.
func (r SubmitProfileRequest) ToInput() domain.ProfileInput {
	return domain.ProfileInput{
		Name:            r.Name,
		Email:           r.Email,
		InstitutionalID: r.InstitutionalID,
		Major:           r.Major,
		GraduationYear:  r.GraduationYear,
	}
}

// ProfileResponse is the submitting student's own stored profile.
type ProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	InstitutionalID string    `json:"institutional_id"`
	Major           string    `json:"major"`
	GraduationYear  int       `json:"graduation_year"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubmitProfileResponse defines the successful response for profile submission.
type SubmitProfileResponse struct {
	Matched bool            `json:"matched"`
	Profile ProfileResponse `json:"profile"`

	// Match is the partner, present only when Matched is true
	Match *domain.PartnerSummary `json:"match,omitempty"`
}

// CheckMatchResponse defines the successful response for a match check.
type CheckMatchResponse struct {
	Matched bool                   `json:"matched"`
	Match   *domain.PartnerSummary `json:"match,omitempty"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func profileToResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		InstitutionalID: p.InstitutionalID,
		Major:           p.Major,
		GraduationYear:  p.GraduationYear,
		CreatedAt:       p.CreatedAt,
	}
}
