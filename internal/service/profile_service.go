package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/events"
	"github.com/rcssa/match-api/internal/matching"
	"github.com/rcssa/match-api/internal/platform/logger"
	"github.com/rcssa/match-api/internal/store"
)

// MatchResult is the match status reported to a student.
// Partner is set only when State is matching.StateMatched.
type MatchResult struct {
	State   matching.State
	Partner *domain.PartnerSummary
}

// Matched reports whether the profile has a partner.
func (r MatchResult) Matched() bool {
	return r.State == matching.StateMatched
}

// SubmitResult is the outcome of SubmitProfile.
type SubmitResult struct {
	Profile *domain.Profile
	Match   MatchResult
}

// Matcher pairs a stored profile with a partner.
type Matcher interface {
	Match(ctx context.Context, p *domain.Profile) (*matching.Result, error)
}

// ProfileService is the boundary used by the HTTP layer.
type ProfileService interface {
	// SubmitProfile validates and stores a new profile, then tries to match it.
	// Returns *domain.ValidationError for malformed input and an error wrapping
	// store.ErrDuplicate when the email or institutional id is taken. Once the
	// profile is stored, matching failures leave it pending instead of failing.
	SubmitProfile(ctx context.Context, in domain.ProfileInput) (*SubmitResult, error)

	// CheckMatch reports the match status of a profile. A match whose partner
	// is gone or no longer points back is repaired and reported as pending.
	// Returns an error wrapping store.ErrProfileNotFound for unknown ids.
	CheckMatch(ctx context.Context, id uuid.UUID) (*MatchResult, error)
}

// ProfileServiceImpl implements the ProfileService interface
type ProfileServiceImpl struct {
	profiles store.ProfileStore
	matcher  Matcher
	rules    domain.ProfileRules
	emitter  events.EventEmitter
	logger   *slog.Logger
}

var _ ProfileService = (*ProfileServiceImpl)(nil)

// NewProfileService creates a new ProfileService. emitter may be nil.
func NewProfileService(
	profiles store.ProfileStore,
	matcher Matcher,
	rules domain.ProfileRules,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *ProfileServiceImpl {
	if profiles == nil {
		panic("profile store cannot be nil")
	}
	if matcher == nil {
		panic("matcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileServiceImpl{
		profiles: profiles,
		matcher:  matcher,
		rules:    rules,
		emitter:  emitter,
		logger:   logger.With("component", "profile_service"),
	}
}

// SubmitProfile implements ProfileService.
func (s *ProfileServiceImpl) SubmitProfile(ctx context.Context, in domain.ProfileInput) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	profile, err := domain.NewProfile(in, s.rules)
	if err != nil {
		log.Debug("profile submission rejected", "error", err)
		return nil, err
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if store.IsDuplicateError(err) {
			log.Info("duplicate profile submission", "error", err)
		} else {
			log.Error("failed to store profile",
				"error", err,
				"profile_id", profile.ID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	log.Info("profile created",
		"profile_id", profile.ID,
		"major", profile.Major)
	s.emit(ctx, events.TypeProfileCreated, events.ProfileCreated{
		ProfileID: profile.ID,
		Major:     profile.Major,
	})

	res, err := s.matcher.Match(ctx, profile)
	if err != nil {
		log.Warn("matching failed, profile left pending",
			"error", err,
			"profile_id", profile.ID)
		return &SubmitResult{
			Profile: profile,
			Match:   MatchResult{State: matching.StatePending},
		}, nil
	}

	result := &SubmitResult{
		Profile: res.Profile,
		Match:   MatchResult{State: res.State},
	}
	if res.Matched() {
		summary := res.Partner.Summary()
		result.Match.Partner = &summary
		s.emit(ctx, events.TypeProfileMatched, events.ProfileMatched{
			ProfileID: res.Profile.ID,
			PartnerID: res.Partner.ID,
			SameMajor: res.Partner.Major == res.Profile.Major,
			Attempts:  res.Attempts,
		})
	}
	return result, nil
}

// CheckMatch implements ProfileService.
func (s *ProfileServiceImpl) CheckMatch(ctx context.Context, id uuid.UUID) (*MatchResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrProfileNotFound) {
			log.Error("failed to load profile", "error", err, "profile_id", id)
		}
		return nil, fmt.Errorf("failed to check match: %w", err)
	}
	if !profile.IsMatched {
		return &MatchResult{State: matching.StatePending}, nil
	}

	partner, err := s.reciprocatingPartner(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to check match: %w", err)
	}
	if partner != nil {
		summary := partner.Summary()
		return &MatchResult{State: matching.StateMatched, Partner: &summary}, nil
	}

	formerPartner := *profile.MatchedWith
	repaired, err := s.profiles.RepairOrphan(ctx, id)
	if err != nil {
		log.Error("failed to repair orphaned match", "error", err, "profile_id", id)
		return nil, fmt.Errorf("failed to repair match: %w", err)
	}
	if repaired.IsMatched {
		// the reference healed between the two reads
		partner, err := s.reciprocatingPartner(ctx, repaired)
		if err != nil {
			return nil, fmt.Errorf("failed to check match: %w", err)
		}
		if partner != nil {
			summary := partner.Summary()
			return &MatchResult{State: matching.StateMatched, Partner: &summary}, nil
		}
		return &MatchResult{State: matching.StatePending}, nil
	}

	log.Info("orphaned match repaired",
		"profile_id", id,
		"former_partner_id", formerPartner)
	s.emit(ctx, events.TypeProfileMatchRepaired, events.ProfileMatchRepaired{
		ProfileID:       id,
		FormerPartnerID: formerPartner,
	})
	return &MatchResult{State: matching.StatePending}, nil
}

// reciprocatingPartner returns p's partner when it exists and points back,
// or nil when the reference is dangling.
func (s *ProfileServiceImpl) reciprocatingPartner(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	partner, err := s.profiles.GetByID(ctx, *p.MatchedWith)
	if errors.Is(err, store.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !partner.IsMatchedWith(p.ID) {
		return nil, nil
	}
	return partner, nil
}

func (s *ProfileServiceImpl) emit(ctx context.Context, eventType string, payload any) {
	if s.emitter == nil {
		return
	}
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		s.logger.Error("failed to build event", "error", err, "event_type", eventType)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("event handler failed",
			"error", err,
			"event_type", eventType)
	}
}
