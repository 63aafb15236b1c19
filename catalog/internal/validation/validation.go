// Package validation holds the pure candidate predicates. Rules are
// evaluated independently and every failure is reported, so callers can
// build a complete field-level response in one round trip.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bookcatalog/catalog-service/catalog/internal/model"
)

const minNameLen = 2

// ValidateBook checks a candidate against the field rules. The clock is
// read once by the caller and passed in, so the date rule cannot race
// against itself. An empty result means the candidate is valid.
func ValidateBook(c model.BookCandidate, now time.Time) []model.Violation {
	var vs []model.Violation
	vs = appendNameViolation(vs, "title", c.Title)
	vs = appendNameViolation(vs, "author", c.Author)
	vs = appendDateViolation(vs, c.PublicationDate, now)
	if c.Price < 0 {
		vs = append(vs, model.Violation{Field: "price", Reason: "must not be negative"})
	}
	return vs
}

func appendNameViolation(vs []model.Violation, field, value string) []model.Violation {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return append(vs, model.Violation{Field: field, Reason: "must not be empty"})
	case utf8.RuneCountInString(trimmed) < minNameLen:
		return append(vs, model.Violation{
			Field:  field,
			Reason: fmt.Sprintf("must be at least %d characters", minNameLen),
		})
	}
	return vs
}

func appendDateViolation(vs []model.Violation, d model.Date, now time.Time) []model.Violation {
	switch {
	case d.IsZero():
		return append(vs, model.Violation{Field: "publicationDate", Reason: "must be set"})
	case dateOnly(d.Time).After(dateOnly(now)):
		return append(vs, model.Violation{Field: "publicationDate", Reason: "must not be in the future"})
	}
	return vs
}

// dateOnly drops the time-of-day part so the future check compares
// calendar dates, not instants.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
