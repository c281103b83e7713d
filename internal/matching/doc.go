// Package matching pairs a newly created profile with an unmatched partner.
//
// The engine is reactive: it runs once per submission and never rescans.
// Candidate selection and the atomic pair commit are delegated to the
// store; the engine owns the bounded retry when a commit loses a race.
package matching
