package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultMajors is the catalog offered to students when none is configured.
var DefaultMajors = []string{
	"Computer Science",
	"Engineering",
	"Business",
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Psychology",
	"Economics",
	"Other",
}

// MajorCatalog maps user-entered majors onto their canonical spelling.
// Lookups are case-insensitive and ignore repeated whitespace, so
// "computer  science" and "Computer Science" are the same major.
type MajorCatalog struct {
	majors []string
	byKey  map[string]string
}

// NewMajorCatalog builds a catalog from majors. Blank entries are skipped and
// later duplicates (after folding) are ignored.
func NewMajorCatalog(majors []string) *MajorCatalog {
	c := &MajorCatalog{byKey: make(map[string]string, len(majors))}
	for _, m := range majors {
		name := collapseSpace(m)
		if name == "" {
			continue
		}
		key := majorKey(name)
		if _, dup := c.byKey[key]; dup {
			continue
		}
		c.byKey[key] = name
		c.majors = append(c.majors, name)
	}
	return c
}

// Canonical returns the catalog spelling of major.
func (c *MajorCatalog) Canonical(major string) (string, bool) {
	name, ok := c.byKey[majorKey(major)]
	return name, ok
}

// Contains reports whether major is in the catalog.
func (c *MajorCatalog) Contains(major string) bool {
	_, ok := c.Canonical(major)
	return ok
}

// Majors returns the canonical majors in catalog order.
func (c *MajorCatalog) Majors() []string {
	out := make([]string, len(c.majors))
	copy(out, c.majors)
	return out
}

// A cases.Caser is stateful, so one is created per call.
func majorKey(s string) string {
	return cases.Fold().String(collapseSpace(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
