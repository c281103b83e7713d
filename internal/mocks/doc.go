// Package mocks provides centralized mock implementations for testing.
//
// Mocks use function fields for each interface method. When a field is nil
// the call falls through to a default, usually a real in-memory
// implementation, so tests only override the behaviour they care about.
//
// Usage:
//
//	import "github.com/rcssa/match-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    ps := mocks.NewMockProfileStore()
//	    ps.CommitMatchFn = func(ctx context.Context, a, b uuid.UUID) error {
//	        return store.ErrConflict
//	    }
//
//	    // Use the mock in your test...
//	}
package mocks
