package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/service"
)

// ErrNotConfigured is returned by mock methods without a function field.
var ErrNotConfigured = errors.New("mock method not configured")

// MockProfileService implements service.ProfileService for handler tests.
type MockProfileService struct {
	SubmitProfileFn func(ctx context.Context, in domain.ProfileInput) (*service.SubmitResult, error)
	CheckMatchFn    func(ctx context.Context, id uuid.UUID) (*service.MatchResult, error)
}

var _ service.ProfileService = (*MockProfileService)(nil)

// SubmitProfile implements the ProfileService interface
func (m *MockProfileService) SubmitProfile(
	ctx context.Context,
	in domain.ProfileInput,
) (*service.SubmitResult, error) {
	if m.SubmitProfileFn != nil {
		return m.SubmitProfileFn(ctx, in)
	}
	return nil, ErrNotConfigured
}

// CheckMatch implements the ProfileService interface
func (m *MockProfileService) CheckMatch(ctx context.Context, id uuid.UUID) (*service.MatchResult, error) {
	if m.CheckMatchFn != nil {
		return m.CheckMatchFn(ctx, id)
	}
	return nil, ErrNotConfigured
}
