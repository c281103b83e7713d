// Package postgres provides the PostgreSQL implementation of
// store.ProfileStore. Matches are committed in a single transaction that
// row-locks both profiles in id order and updates them only while both are
// still unmatched.
package postgres
