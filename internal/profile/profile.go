package profile

import (
	"strings"

	"sourcing-agent/internal/search"
)

// UnknownValue fills company and location fields the extractor could not resolve.
const UnknownValue = "Unknown"

// Candidate is the normalized profile record produced from a raw lookup
// result. Found=false means the lookup had no usable public profile; all other
// fields stay at their defaults in that case.
type Candidate struct {
	Name        string `json:"name"`
	LinkedinURL string `json:"linkedin_url"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	CurrentRole string `json:"current_role"`
	Education   string `json:"education"`
	Headline    string `json:"-"`
	Snippet     string `json:"-"`
	Found       bool   `json:"-"`
}

// Normalize turns a raw search hit into a canonical candidate record. A nil
// raw result yields a well-formed not-found record preserving the name. It
// never fails: any field the extractor cannot resolve keeps its default.
func Normalize(raw *search.Result, name string, extractor *Extractor) Candidate {
	if extractor == nil {
		extractor = DefaultExtractor()
	}

	candidate := Candidate{
		Name:     name,
		Company:  UnknownValue,
		Location: UnknownValue,
	}

	if raw == nil {
		return candidate
	}

	candidate.Found = true
	candidate.LinkedinURL = raw.Link
	candidate.Headline = raw.Title
	candidate.Snippet = raw.Snippet

	if extracted := nameFromTitle(raw.Title); extracted != "" {
		candidate.Name = extracted
	}

	if company := extractor.Company(raw.Title, raw.Snippet, raw.Extensions); company != "" {
		candidate.Company = company
	}

	if location := locationFromExtensions(raw.Extensions); location != "" {
		candidate.Location = location
	}

	candidate.CurrentRole = roleFromExtensions(raw.Extensions)
	if candidate.CurrentRole == "" {
		candidate.CurrentRole = roleFromTitle(raw.Title)
	}

	candidate.Education = educationFromSnippet(raw.Snippet)

	return candidate
}

// nameFromTitle takes the part of a search hit title before the first
// dash-style separator, which is where profile pages put the person's name.
func nameFromTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range []string{" - ", " – ", " | "} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return title
}

func educationFromSnippet(snippet string) string {
	lower := strings.ToLower(snippet)
	switch {
	case strings.Contains(lower, "phd") || strings.Contains(lower, "ph.d"):
		return "PhD"
	case strings.Contains(lower, "m.tech") || strings.Contains(lower, "master"):
		return "Master's degree"
	case strings.Contains(lower, "b.tech") || strings.Contains(lower, "bachelor"):
		return "Bachelor's degree"
	case strings.Contains(lower, "student"):
		return "Student"
	}
	return ""
}
