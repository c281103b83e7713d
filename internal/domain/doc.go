// Package domain defines the core business entities and errors: student
// profiles, the partner summary exposed on a match, and the major catalog
// used to decide same-major preference.
package domain
