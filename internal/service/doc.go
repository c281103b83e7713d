// Package service contains the application use cases exposed to the
// delivery layer. It orchestrates the profile store, the matching engine,
// and the event emitter to fulfill profile submission and match checks.
//
// Key components:
//
// 1. ProfileService:
//   - SubmitProfile validates, stores, and matches a new profile
//   - CheckMatch reports a profile's partner and repairs dangling matches
//
// 2. Error Handling:
//   - Validation failures surface as *domain.ValidationError
//   - Store failures keep their sentinel (store.ErrDuplicate,
//     store.ErrProfileNotFound, store.ErrUnavailable) so the API layer can
//     map them with errors.Is
//
// The service layer depends on domain entities and store interfaces, never
// on a specific storage backend.
package service
