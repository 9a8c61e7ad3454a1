package profile

import (
	"testing"

	"sourcing-agent/internal/search"
)

func TestNormalizeNotFound(t *testing.T) {
	candidate := Normalize(nil, "Jane Doe", DefaultExtractor())

	if candidate.Found {
		t.Fatal("nil result must produce a not-found candidate")
	}
	if candidate.Name != "Jane Doe" {
		t.Fatalf("expected the requested name to be kept, got %q", candidate.Name)
	}
	if candidate.Company != UnknownValue || candidate.Location != UnknownValue {
		t.Fatalf("expected unknown defaults, got company=%q location=%q", candidate.Company, candidate.Location)
	}
	if candidate.LinkedinURL != "" {
		t.Fatalf("expected no profile url, got %q", candidate.LinkedinURL)
	}
}

func TestNormalizeFromSnippet(t *testing.T) {
	raw := &search.Result{
		Title:   "Priya Sharma - Senior Software Engineer - LinkedIn",
		Link:    "https://linkedin.com/in/priya-sharma",
		Snippet: "Senior Software Engineer at Google. PhD in Computer Science.",
	}

	candidate := Normalize(raw, "Priya Sharma", DefaultExtractor())

	if !candidate.Found {
		t.Fatal("expected a found candidate")
	}
	if candidate.Name != "Priya Sharma" {
		t.Fatalf("unexpected name: %q", candidate.Name)
	}
	if candidate.Company != "Google" {
		t.Fatalf("expected company Google, got %q", candidate.Company)
	}
	if candidate.CurrentRole != "Senior Software Engineer" {
		t.Fatalf("unexpected role: %q", candidate.CurrentRole)
	}
	if candidate.Education != "PhD" {
		t.Fatalf("unexpected education: %q", candidate.Education)
	}
	if candidate.LinkedinURL != raw.Link {
		t.Fatalf("unexpected url: %q", candidate.LinkedinURL)
	}
}

func TestNormalizeFromExtensions(t *testing.T) {
	raw := &search.Result{
		Title:      "Rahul Verma | LinkedIn",
		Link:       "https://linkedin.com/in/rahul-verma",
		Snippet:    "Passionate about distributed systems.",
		Extensions: []string{"Bengaluru, Bangalore Urban", "Data Scientist", "Flipkart"},
	}

	candidate := Normalize(raw, "Rahul Verma", DefaultExtractor())

	if candidate.Company != "Flipkart" {
		t.Fatalf("expected company from extensions, got %q", candidate.Company)
	}
	if candidate.CurrentRole != "Data Scientist" {
		t.Fatalf("expected role from extensions, got %q", candidate.CurrentRole)
	}
	if candidate.Location != "Bengaluru, Bangalore Urban" {
		t.Fatalf("expected location from extensions, got %q", candidate.Location)
	}
}

func TestNormalizeKeepsUnknownOnEmptySignal(t *testing.T) {
	raw := &search.Result{
		Title:   "John Smith",
		Link:    "https://linkedin.com/in/john-smith",
		Snippet: "View the profile.",
	}

	candidate := Normalize(raw, "John Smith", DefaultExtractor())

	if candidate.Company != UnknownValue {
		t.Fatalf("expected unknown company, got %q", candidate.Company)
	}
	if candidate.Location != UnknownValue {
		t.Fatalf("expected unknown location, got %q", candidate.Location)
	}
	if candidate.Education != "" {
		t.Fatalf("expected no education, got %q", candidate.Education)
	}
}

func TestCompanyPrefersSnippetOverTitle(t *testing.T) {
	extractor := DefaultExtractor()

	company := extractor.Company(
		"Aisha Khan - ML Engineer at Oldcorp - LinkedIn",
		"ML Engineer at Newcorp, building ranking models.",
		nil,
	)

	if company != "Newcorp" {
		t.Fatalf("expected the snippet employer, got %q", company)
	}
}

func TestCompanyRejectsNoise(t *testing.T) {
	extractor := DefaultExtractor()

	cases := []struct {
		name    string
		snippet string
	}{
		{"linkedin token", "Engineer at LinkedIn"},
		{"too short", "Engineer at AB"},
		{"too many words", "Engineer at one of the very best startups around"},
	}

	for _, tc := range cases {
		if company := extractor.Company("", tc.snippet, nil); company != "" {
			t.Fatalf("%s: expected no company, got %q", tc.name, company)
		}
	}
}

func TestCompanyStopsAtClauseBoundary(t *testing.T) {
	extractor := DefaultExtractor()

	company := extractor.Company("", "Software Engineer at Stripe in San Francisco.", nil)
	if company != "Stripe" {
		t.Fatalf("expected Stripe, got %q", company)
	}
}

func TestNameFromTitle(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Jane Doe - Engineer - LinkedIn", "Jane Doe"},
		{"Jane Doe | LinkedIn", "Jane Doe"},
		{"Jane Doe", "Jane Doe"},
	}

	for _, tc := range cases {
		if got := nameFromTitle(tc.title); got != tc.want {
			t.Fatalf("nameFromTitle(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestEducationFromSnippet(t *testing.T) {
	cases := []struct {
		snippet string
		want    string
	}{
		{"Ph.D. candidate in NLP", "PhD"},
		{"Master of Science, 2019", "Master's degree"},
		{"B.Tech from NIT Trichy", "Bachelor's degree"},
		{"CS student at a state college", "Student"},
		{"10 years in fintech", ""},
	}

	for _, tc := range cases {
		if got := educationFromSnippet(tc.snippet); got != tc.want {
			t.Fatalf("educationFromSnippet(%q) = %q, want %q", tc.snippet, got, tc.want)
		}
	}
}
