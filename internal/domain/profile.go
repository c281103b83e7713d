package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Profile is a student's submission and its match state.
type Profile struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	InstitutionalID string     `json:"institutional_id"`
	Major           string     `json:"major"`
	GraduationYear  int        `json:"graduation_year"`
	IsMatched       bool       `json:"is_matched"`
	MatchedWith     *uuid.UUID `json:"matched_with,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ProfileInput holds the submitted fields before normalization.
type ProfileInput struct {
	Name            string
	Email           string
	InstitutionalID string
	Major           string
	GraduationYear  int
}

// ProfileRules are the configurable constraints applied to new profiles.
type ProfileRules struct {
	Majors            *MajorCatalog
	MinGraduationYear int
	MaxGraduationYear int
}

// PartnerSummary is what a student learns about their match. It never
// carries the partner's institutional or internal identifiers.
type PartnerSummary struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Major          string `json:"major"`
	GraduationYear int    `json:"graduation_year"`
}

// NewProfile normalizes in and creates an unmatched Profile with a fresh ID.
// Strings are trimmed, email and institutional id are lower-cased, and the
// major is replaced by its catalog spelling. Returns a *ValidationError
// listing every failing field.
func NewProfile(in ProfileInput, rules ProfileRules) (*Profile, error) {
	now := time.Now().UTC()
	p := &Profile{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(in.Name),
		Email:           NormalizeEmail(in.Email),
		InstitutionalID: NormalizeInstitutionalID(in.InstitutionalID),
		Major:           collapseSpace(in.Major),
		GraduationYear:  in.GraduationYear,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ve := &ValidationError{}
	if p.Name == "" {
		ve.Add("name", "is required")
	}
	switch {
	case p.Email == "":
		ve.Add("email", "is required")
	case !emailPattern.MatchString(p.Email):
		ve.Add("email", "is not a valid email address")
		ve.Err = ErrInvalidEmail
	}
	if p.InstitutionalID == "" {
		ve.Add("institutional_id", "is required")
	}
	switch {
	case p.Major == "":
		ve.Add("major", "is required")
	case rules.Majors != nil:
		canonical, ok := rules.Majors.Canonical(p.Major)
		if !ok {
			ve.Add("major", "is not a recognized major")
			if ve.Err == nil {
				ve.Err = ErrUnknownMajor
			}
		}
		p.Major = canonical
	}
	if rules.MinGraduationYear != 0 || rules.MaxGraduationYear != 0 {
		if p.GraduationYear < rules.MinGraduationYear || p.GraduationYear > rules.MaxGraduationYear {
			ve.Add("graduation_year", fmt.Sprintf("must be between %d and %d",
				rules.MinGraduationYear, rules.MaxGraduationYear))
			if ve.Err == nil {
				ve.Err = ErrGraduationYearOutOfRange
			}
		}
	}

	if ve.HasErrors() {
		return nil, ve
	}
	return p, nil
}

// NormalizeEmail trims and lower-cases an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// NormalizeInstitutionalID trims and lower-cases an institutional id.
func NormalizeInstitutionalID(id string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(id))
}

// Validate checks the match-state invariants of a stored profile.
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.IsMatched != (p.MatchedWith != nil) {
		return fmt.Errorf("%w: is_matched=%t but matched_with set=%t",
			ErrInconsistentMatchState, p.IsMatched, p.MatchedWith != nil)
	}
	if p.MatchedWith != nil && *p.MatchedWith == p.ID {
		return fmt.Errorf("%w: profile %s matched with itself", ErrInconsistentMatchState, p.ID)
	}
	return nil
}

// MatchWith records partner as this profile's match.
func (p *Profile) MatchWith(partner uuid.UUID, at time.Time) {
	id := partner
	p.IsMatched = true
	p.MatchedWith = &id
	p.UpdatedAt = at
}

// ClearMatch resets the profile to unmatched.
func (p *Profile) ClearMatch(at time.Time) {
	p.IsMatched = false
	p.MatchedWith = nil
	p.UpdatedAt = at
}

// IsMatchedWith reports whether the profile references partner.
func (p *Profile) IsMatchedWith(partner uuid.UUID) bool {
	return p.IsMatched && p.MatchedWith != nil && *p.MatchedWith == partner
}

// Summary returns the contact details shared with a match partner.
func (p *Profile) Summary() PartnerSummary {
	return PartnerSummary{
		Name:           p.Name,
		Email:          p.Email,
		Major:          p.Major,
		GraduationYear: p.GraduationYear,
	}
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.MatchedWith != nil {
		id := *p.MatchedWith
		c.MatchedWith = &id
	}
	return &c
}
