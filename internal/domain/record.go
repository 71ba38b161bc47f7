package domain

import (
	"fmt"
	"strings"
	"time"
)

// Field names the extractable columns shared by every schema variant.
type Field string

const (
	FieldTitle       Field = "title"
	FieldURL         Field = "url"
	FieldDescription Field = "description"
	FieldFileType    Field = "file_type"
)

// Candidate is a raw, not-yet-validated extraction result. A nil field means
// the source never exposed it; an empty string means it was found empty.
type Candidate struct {
	Title       *string
	URL         *string
	Description *string
	FileType    *string
}

// Record is a normalized, persistable entity. Records are immutable once
// built; normalization constructs a fresh Record instead of touching the
// candidate it came from.
type Record struct {
	Title       *string
	URL         *string
	Description *string
	FileType    *string
}

// Get returns the value of the named field.
func (r Record) Get(f Field) *string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldURL:
		return r.URL
	case FieldDescription:
		return r.Description
	case FieldFileType:
		return r.FileType
	}
	return nil
}

// Empty reports whether no field was extracted at all.
func (r Record) Empty() bool {
	return r.Title == nil && r.URL == nil && r.Description == nil && r.FileType == nil
}

// SchemaVariant describes one destination-table shape. The store is
// parameterized by it rather than hard-coding a single table.
type SchemaVariant struct {
	Name    string
	Table   string
	Columns []Field
	// UniqueURL declares the url column unique; duplicate inserts then
	// surface as a recoverable conflict instead of a stored row.
	UniqueURL bool
	// Required lists fields that must be present and non-empty after
	// normalization; candidates missing one are dropped.
	Required []Field
	// AllowEmpty permits persisting a record with every field absent.
	AllowEmpty bool
}

var (
	// VariantMinimal is the {id, title} table; even an empty title is
	// accepted as long as the field was extracted.
	VariantMinimal = SchemaVariant{
		Name:    "minimal",
		Table:   "files",
		Columns: []Field{FieldTitle},
	}

	// VariantFiles is the {id, title, url, description, file_type} table
	// with a unique url. It stores whatever subset the page exposed,
	// nulls included.
	VariantFiles = SchemaVariant{
		Name:       "files",
		Table:      "files",
		Columns:    []Field{FieldTitle, FieldURL, FieldDescription, FieldFileType},
		UniqueURL:  true,
		AllowEmpty: true,
	}

	// VariantArticles is the {id, title, url, description} table with a
	// unique url; both title and url are mandatory.
	VariantArticles = SchemaVariant{
		Name:      "articles",
		Table:     "articles",
		Columns:   []Field{FieldTitle, FieldURL, FieldDescription},
		UniqueURL: true,
		Required:  []Field{FieldTitle, FieldURL},
	}
)

const queryPlaceholder = "{query}"

// Profile binds an extractor strategy to its schema variant, locator
// template and execution mode. One orchestrator serves any profile.
type Profile struct {
	Name            string
	Extractor       string
	Variant         SchemaVariant
	LocatorTemplate string
	// Background detaches extraction and persistence from the request;
	// the HTTP response never waits for either.
	Background bool
	// DescriptionFromTitle copies the title into an absent description.
	DescriptionFromTitle bool
}

// BuildLocator substitutes the query into the locator template. The query
// arrives as received; no additional percent-encoding is applied.
func (p Profile) BuildLocator(query string) string {
	return strings.ReplaceAll(p.LocatorTemplate, queryPlaceholder, query)
}

var profiles = map[string]Profile{
	"static": {
		Name:            "static",
		Extractor:       "static",
		Variant:         VariantMinimal,
		LocatorTemplate: "https://scholar.google.com/scholar?hl=en&as_sdt=0%2C5&q={query}",
	},
	"rendered": {
		Name:            "rendered",
		Extractor:       "rendered",
		Variant:         VariantFiles,
		LocatorTemplate: "https://scholar.google.com/scholar?hl=en&as_sdt=0%2C5&q={query}&btnG=",
	},
	"agentic": {
		Name:                 "agentic",
		Extractor:            "agent",
		Variant:              VariantArticles,
		LocatorTemplate:      "https://www.cnnindonesia.com/search/?query={query}",
		Background:           true,
		DescriptionFromTitle: true,
	},
}

// ProfileByName resolves a configured profile name.
func ProfileByName(name string) (Profile, error) {
	if p, ok := profiles[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}

// JobStatus enumerates the lifecycle of one accepted search request.
type JobStatus string

const (
	JobAccepted  JobStatus = "accepted"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is the persisted status row for one search request. It is the
// structured failure sink behind the optimistic "scraping started" reply.
type Job struct {
	ID        int64     `json:"id"`
	Query     string    `json:"query"`
	Profile   string    `json:"profile"`
	Status    JobStatus `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
