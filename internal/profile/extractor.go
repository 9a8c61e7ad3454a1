package profile

import (
	"strings"
)

// Extractor parses company and role tokens out of free-text search hit
// fragments. Separators are tried in order; the first one that yields a
// non-empty company token wins. The set is configurable because profile titles
// come in more formats than any fixed list covers.
type Extractor struct {
	Separators []string
}

func DefaultExtractor() *Extractor {
	return &Extractor{
		Separators: []string{" at ", " @ ", " – ", " - ", ","},
	}
}

// noise tokens that disqualify an extracted company candidate.
var companyNoise = map[string]struct{}{
	"linkedin": {}, "profile": {}, "bio": {}, "about": {}, "view": {}, "contact": {},
	"the": {}, "and": {}, "or": {}, "inc": {}, "ltd": {}, "llc": {},
}

var roleKeywords = []string{
	"intern", "engineer", "developer", "analyst", "scientist", "manager",
	"researcher", "director", "lead", "head", "architect", "consultant",
}

var locationKeywords = []string{
	"india", "usa", "united states", "uk", "united kingdom", "canada", "germany",
	"california", "texas", "new york", "washington", "mountain view", "san francisco",
	"seattle", "london", "berlin", "mumbai", "delhi", "bangalore", "pune",
	"hyderabad", "chennai", "indore", "area", "region",
}

// Company resolves the employer name, preferring the snippet over rich-snippet
// extensions over the title, mirroring how much signal each source carries.
func (e *Extractor) Company(title, snippet string, extensions []string) string {
	for _, sep := range e.Separators {
		if company := companyAfter(snippet, sep); company != "" {
			return company
		}
	}

	if company := companyFromExtensions(extensions); company != "" {
		return company
	}

	for _, sep := range e.Separators {
		if company := companyAfter(title, sep); company != "" {
			return company
		}
	}

	return ""
}

// companyAfter takes the token following sep in text and cleans it up. Empty
// return means the separator produced nothing usable.
func companyAfter(text, sep string) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(sep))
	if idx < 0 {
		return ""
	}

	rest := text[idx+len(sep):]
	// A company token ends at the next clause boundary.
	for _, boundary := range []string{".", ",", ";", ":", " - ", " – ", " | ", " in ", " as ", " for ", " where "} {
		if cut := strings.Index(rest, boundary); cut >= 0 {
			rest = rest[:cut]
		}
	}

	return cleanCompany(rest)
}

func companyFromExtensions(extensions []string) string {
	for _, ext := range extensions {
		lower := strings.ToLower(ext)
		if containsAny(lower, locationKeywords) || containsAny(lower, roleKeywords) {
			continue
		}
		if strings.Contains(lower, "years") || strings.Contains(lower, "experience") ||
			strings.Contains(lower, "student") || strings.Contains(lower, "graduate") {
			continue
		}

		words := strings.Fields(ext)
		capitalized := make([]string, 0, len(words))
		for _, word := range words {
			if len(word) > 2 && word[0] >= 'A' && word[0] <= 'Z' {
				capitalized = append(capitalized, word)
			}
		}

		if len(capitalized) > 0 && len(capitalized) <= 3 {
			if company := cleanCompany(strings.Join(capitalized, " ")); company != "" {
				return company
			}
		}
	}

	return ""
}

func cleanCompany(raw string) string {
	company := strings.TrimSpace(raw)
	company = strings.Trim(company, ".,:;!?-–")
	company = strings.Join(strings.Fields(company), " ")

	if len(company) <= 2 || len(strings.Fields(company)) > 4 {
		return ""
	}

	if _, noisy := companyNoise[strings.ToLower(company)]; noisy {
		return ""
	}
	if strings.Contains(strings.ToLower(company), "linkedin") {
		return ""
	}

	return company
}

func roleFromExtensions(extensions []string) string {
	for _, ext := range extensions {
		if containsAny(strings.ToLower(ext), roleKeywords) {
			return strings.TrimSpace(ext)
		}
	}
	return ""
}

// roleFromTitle pulls the middle segment of "Name - Role - Company" titles
// when it looks like a job title.
func roleFromTitle(title string) string {
	parts := strings.Split(title, " - ")
	if len(parts) < 2 {
		return ""
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if containsAny(strings.ToLower(part), roleKeywords) {
			return part
		}
	}

	return ""
}

func locationFromExtensions(extensions []string) string {
	for _, ext := range extensions {
		if containsAny(strings.ToLower(ext), locationKeywords) {
			return strings.TrimSpace(ext)
		}
	}
	return ""
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
