package normalize

import (
	"errors"
	"testing"

	"scraperd/internal/domain"
)

func strptr(s string) *string { return &s }

func TestNormalizeTrimsFields(t *testing.T) {
	t.Parallel()

	cand := domain.Candidate{
		Title: strptr("  GNN Survey \n"),
		URL:   strptr(" https://example.org/paper "),
	}

	rec, err := Normalize(cand, domain.VariantArticles, Policy{})
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if *rec.Title != "GNN Survey" {
		t.Fatalf("title not trimmed: %q", *rec.Title)
	}
	if *rec.URL != "https://example.org/paper" {
		t.Fatalf("url not trimmed: %q", *rec.URL)
	}
}

func TestNormalizeDoesNotMutateCandidate(t *testing.T) {
	t.Parallel()

	title := "  padded  "
	cand := domain.Candidate{Title: &title}

	if _, err := Normalize(cand, domain.VariantMinimal, Policy{}); err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if title != "  padded  " {
		t.Fatalf("candidate mutated: %q", title)
	}
}

func TestDescriptionFromTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate domain.Candidate
		policy    Policy
		wantDesc  string
		wantNil   bool
	}{
		{
			name:      "copied when absent",
			candidate: domain.Candidate{Title: strptr("Headline"), URL: strptr("https://e.org/a")},
			policy:    Policy{DescriptionFromTitle: true},
			wantDesc:  "Headline",
		},
		{
			name:      "copied when empty",
			candidate: domain.Candidate{Title: strptr("Headline"), URL: strptr("https://e.org/a"), Description: strptr("  ")},
			policy:    Policy{DescriptionFromTitle: true},
			wantDesc:  "Headline",
		},
		{
			name:      "existing description wins",
			candidate: domain.Candidate{Title: strptr("Headline"), URL: strptr("https://e.org/a"), Description: strptr("real summary")},
			policy:    Policy{DescriptionFromTitle: true},
			wantDesc:  "real summary",
		},
		{
			name:      "policy off leaves description absent",
			candidate: domain.Candidate{Title: strptr("Headline"), URL: strptr("https://e.org/a")},
			policy:    Policy{},
			wantNil:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, err := Normalize(tc.candidate, domain.VariantArticles, tc.policy)
			if err != nil {
				t.Fatalf("normalize returned error: %v", err)
			}
			if tc.wantNil {
				if rec.Description != nil {
					t.Fatalf("expected absent description, got %q", *rec.Description)
				}
				return
			}
			if rec.Description == nil || *rec.Description != tc.wantDesc {
				t.Fatalf("unexpected description: %v", rec.Description)
			}
		})
	}
}

func TestRejection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate domain.Candidate
		variant   domain.SchemaVariant
		rejected  bool
	}{
		{
			name:      "articles without url",
			candidate: domain.Candidate{Title: strptr("Headline")},
			variant:   domain.VariantArticles,
			rejected:  true,
		},
		{
			name:      "articles without title",
			candidate: domain.Candidate{URL: strptr("https://e.org/a")},
			variant:   domain.VariantArticles,
			rejected:  true,
		},
		{
			name:      "articles all absent",
			candidate: domain.Candidate{},
			variant:   domain.VariantArticles,
			rejected:  true,
		},
		{
			name:      "minimal all absent",
			candidate: domain.Candidate{},
			variant:   domain.VariantMinimal,
			rejected:  true,
		},
		{
			name:      "minimal accepts empty title",
			candidate: domain.Candidate{Title: strptr("")},
			variant:   domain.VariantMinimal,
		},
		{
			name:      "files keeps the all-null row",
			candidate: domain.Candidate{},
			variant:   domain.VariantFiles,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Normalize(tc.candidate, tc.variant, Policy{})
			if tc.rejected {
				if !errors.Is(err, ErrRejected) {
					t.Fatalf("expected rejection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
		})
	}
}
