package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/store"
	"github.com/rcssa/match-api/internal/store/memory"
)

// MockProfileStore implements store.ProfileStore for testing.
// Methods without a function field delegate to Base.
type MockProfileStore struct {
	// Function fields for customizable behavior
	CreateFn              func(ctx context.Context, profile *domain.Profile) error
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	FindEligiblePartnerFn func(ctx context.Context, excludeID uuid.UUID, major string) (*domain.Profile, error)
	CommitMatchFn         func(ctx context.Context, a, b uuid.UUID) error
	RepairOrphanFn        func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// Base handles calls with no function field set
	Base *memory.ProfileStore

	mu    sync.Mutex
	calls map[string]int
}

var _ store.ProfileStore = (*MockProfileStore)(nil)

// NewMockProfileStore creates a mock backed by an empty in-memory store.
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{
		Base:  memory.NewProfileStore(),
		calls: make(map[string]int),
	}
}

func (m *MockProfileStore) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times method was invoked.
func (m *MockProfileStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Create implements the ProfileStore interface
func (m *MockProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, profile)
	}
	return m.Base.Create(ctx, profile)
}

// GetByID implements the ProfileStore interface
func (m *MockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.Base.GetByID(ctx, id)
}

// FindEligiblePartner implements the ProfileStore interface
func (m *MockProfileStore) FindEligiblePartner(
	ctx context.Context,
	excludeID uuid.UUID,
	major string,
) (*domain.Profile, error) {
	m.record("FindEligiblePartner")
	if m.FindEligiblePartnerFn != nil {
		return m.FindEligiblePartnerFn(ctx, excludeID, major)
	}
	return m.Base.FindEligiblePartner(ctx, excludeID, major)
}

// CommitMatch implements the ProfileStore interface
func (m *MockProfileStore) CommitMatch(ctx context.Context, a, b uuid.UUID) error {
	m.record("CommitMatch")
	if m.CommitMatchFn != nil {
		return m.CommitMatchFn(ctx, a, b)
	}
	return m.Base.CommitMatch(ctx, a, b)
}

// RepairOrphan implements the ProfileStore interface
func (m *MockProfileStore) RepairOrphan(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	m.record("RepairOrphan")
	if m.RepairOrphanFn != nil {
		return m.RepairOrphanFn(ctx, id)
	}
	return m.Base.RepairOrphan(ctx, id)
}
