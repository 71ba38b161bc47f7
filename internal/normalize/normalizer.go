// Package normalize turns raw extraction candidates into persistable
// records. It is the single place deciding which fields are mandatory for
// a given schema variant; extractors only report what they found.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"scraperd/internal/domain"
)

// ErrRejected wraps every dropped candidate. Rejection is invisible to the
// HTTP caller; the orchestrator logs it and moves on.
var ErrRejected = errors.New("candidate rejected")

// Policy carries normalization behavior that varies by deployment rather
// than by schema.
type Policy struct {
	// DescriptionFromTitle copies the title into a missing description.
	// The agentic deployment has always done this; kept as explicit
	// policy instead of silently fixing it.
	DescriptionFromTitle bool
}

// Normalize trims a candidate's fields, applies the policy and validates it
// against the variant. The candidate itself is never mutated.
func Normalize(c domain.Candidate, variant domain.SchemaVariant, policy Policy) (domain.Record, error) {
	rec := domain.Record{
		Title:       trimmed(c.Title),
		URL:         trimmed(c.URL),
		Description: trimmed(c.Description),
		FileType:    trimmed(c.FileType),
	}

	if policy.DescriptionFromTitle && isBlank(rec.Description) && rec.Title != nil {
		title := *rec.Title
		rec.Description = &title
	}

	for _, f := range variant.Required {
		if isBlank(rec.Get(f)) {
			return domain.Record{}, fmt.Errorf("missing required field %s: %w", f, ErrRejected)
		}
	}

	if !variant.AllowEmpty && rec.Empty() {
		return domain.Record{}, fmt.Errorf("no fields extracted: %w", ErrRejected)
	}

	return rec, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
