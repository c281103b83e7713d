package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/platform/logger"
	"github.com/rcssa/match-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxAttempts bounds how many candidates one submission tries.
const DefaultMaxAttempts = 3

const tracerName = "github.com/rcssa/match-api/internal/matching"

// State is the outcome of a matching run.
type State string

const (
	// StatePending means no partner was committed; the profile waits.
	StatePending State = "pending"
	// StateMatched means the profile is paired and both sides are updated.
	StateMatched State = "matched"
)

// Result reports a matching run. Profile is the latest known state of the
// submitted profile. Partner is set only when State is StateMatched.
type Result struct {
	State    State
	Profile  *domain.Profile
	Partner  *domain.Profile
	Attempts int
}

// Matched reports whether the run ended with a committed pair.
func (r *Result) Matched() bool {
	return r != nil && r.State == StateMatched
}

// Options configures an Engine.
type Options struct {
	// MaxAttempts is the number of find-and-commit rounds before giving up.
	// Zero or negative means DefaultMaxAttempts.
	MaxAttempts int
}

// Engine runs the match protocol against a ProfileStore.
type Engine struct {
	store       store.ProfileStore
	maxAttempts int
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewEngine creates an Engine. If logger is nil, a default logger will be used.
func NewEngine(profiles store.ProfileStore, opts Options, logger *slog.Logger) *Engine {
	if profiles == nil {
		panic("profile store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &Engine{
		store:       profiles,
		maxAttempts: attempts,
		logger:      logger.With(slog.String("component", "matching_engine")),
		tracer:      otel.Tracer(tracerName),
	}
}

// Match tries to pair p with an eligible unmatched profile.
//
// Each round asks the store for the best candidate and commits the pair
// atomically. A commit that loses a race returns store.ErrConflict; the
// engine then re-reads p, since a concurrent arrival may have claimed it,
// and otherwise moves on to the next candidate. When no candidate exists or
// the attempts run out, the result is StatePending.
//
// Store failures other than conflicts are returned wrapped; nothing is
// committed in that case.
func (e *Engine) Match(ctx context.Context, p *domain.Profile) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "matching.Match", trace.WithAttributes(
		attribute.String("profile.id", p.ID.String()),
		attribute.String("profile.major", p.Major),
	))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, e.logger).With(slog.String("profile_id", p.ID.String()))
	self := p.Clone()

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		candidate, err := e.store.FindEligiblePartner(ctx, self.ID, self.Major)
		if errors.Is(err, store.ErrNoEligiblePartner) {
			log.Debug("no eligible partner", slog.Int("attempt", attempt))
			return e.finish(span, &Result{State: StatePending, Profile: self, Attempts: attempt}), nil
		}
		if err != nil {
			return nil, e.fail(span, fmt.Errorf("failed to find eligible partner: %w", err))
		}

		err = e.store.CommitMatch(ctx, self.ID, candidate.ID)
		switch {
		case err == nil:
			at := time.Now().UTC()
			self.MatchWith(candidate.ID, at)
			candidate.MatchWith(self.ID, at)
			log.Info("profiles matched",
				slog.String("partner_id", candidate.ID.String()),
				slog.Bool("same_major", candidate.Major == self.Major),
				slog.Int("attempt", attempt))
			return e.finish(span, &Result{
				State:    StateMatched,
				Profile:  self,
				Partner:  candidate,
				Attempts: attempt,
			}), nil

		case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrProfileNotFound):
			// The candidate was claimed or removed, or p itself was claimed.
			current, partner, getErr := e.currentMatch(ctx, self)
			if getErr != nil {
				return nil, e.fail(span, getErr)
			}
			self = current
			if partner != nil {
				log.Info("profile matched by concurrent submission",
					slog.String("partner_id", partner.ID.String()),
					slog.Int("attempt", attempt))
				return e.finish(span, &Result{
					State:    StateMatched,
					Profile:  self,
					Partner:  partner,
					Attempts: attempt,
				}), nil
			}
			if self.IsMatched {
				// matched to a profile that does not point back; a status
				// check repairs it
				log.Warn("profile holds a one-sided match",
					slog.String("matched_with", self.MatchedWith.String()))
				return e.finish(span, &Result{State: StatePending, Profile: self, Attempts: attempt}), nil
			}
			log.Debug("match commit lost a race, retrying",
				slog.String("candidate_id", candidate.ID.String()),
				slog.Int("attempt", attempt))

		default:
			return nil, e.fail(span, fmt.Errorf("failed to commit match: %w", err))
		}
	}

	log.Info("match attempts exhausted, profile left pending",
		slog.Int("max_attempts", e.maxAttempts))
	return e.finish(span, &Result{State: StatePending, Profile: self, Attempts: e.maxAttempts}), nil
}

// currentMatch re-reads p. When p is matched and its partner points back,
// the partner is returned as well.
func (e *Engine) currentMatch(ctx context.Context, p *domain.Profile) (*domain.Profile, *domain.Profile, error) {
	current, err := e.store.GetByID(ctx, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload profile: %w", err)
	}
	if !current.IsMatched {
		return current, nil, nil
	}

	partner, err := e.store.GetByID(ctx, *current.MatchedWith)
	if errors.Is(err, store.ErrProfileNotFound) {
		return current, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load partner: %w", err)
	}
	if !partner.IsMatchedWith(current.ID) {
		return current, nil, nil
	}
	return current, partner, nil
}

func (e *Engine) finish(span trace.Span, r *Result) *Result {
	span.SetAttributes(
		attribute.String("match.state", string(r.State)),
		attribute.Int("match.attempts", r.Attempts),
	)
	return r
}

func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
