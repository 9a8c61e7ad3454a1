package scoring

import (
	"fmt"
	"strings"

	"sourcing-agent/internal/profile"
)

// Deterministic fallback scoring. Every table below is a plain substring
// lookup so the same profile and description always produce the same numbers.

var topTierEmployers = []string{
	"google", "meta", "facebook", "amazon", "apple", "microsoft", "netflix",
	"openai", "deepmind", "anthropic", "nvidia", "tesla",
}

var strongEmployers = []string{
	"stripe", "uber", "airbnb", "databricks", "salesforce", "linkedin",
	"atlassian", "shopify", "spotify", "intel", "ibm", "oracle", "adobe",
}

var eliteInstitutions = []string{
	"mit", "stanford", "cmu", "carnegie mellon", "berkeley", "caltech",
	"harvard", "princeton", "oxford", "cambridge", "eth", "iit", "nit", "iiit",
	"uiuc",
}

var seniorMarkers = []string{"principal", "staff", "senior", "lead", "head", "director", "vp", "chief"}

var midMarkers = []string{"engineer", "developer", "scientist", "researcher", "analyst", "manager", "architect", "consultant"}

var juniorMarkers = []string{"junior", "intern", "student", "graduate", "trainee"}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "for": {}, "you": {}, "your": {},
	"our": {}, "are": {}, "will": {}, "have": {}, "this": {}, "that": {},
	"from": {}, "who": {}, "what": {}, "work": {}, "team": {}, "role": {},
	"years": {}, "must": {}, "able": {}, "strong": {}, "experience": {},
	"looking": {}, "candidates": {}, "company": {}, "about": {}, "requirements": {},
}

// heuristicBreakdown computes all five sub-scores from profile content alone.
func heuristicBreakdown(candidate profile.Candidate, jobDescription string) Breakdown {
	fired := make([]string, 0, 5)

	technical, note := technicalScore(candidate, jobDescription)
	fired = append(fired, note)

	experience, note := experienceScore(candidate)
	fired = append(fired, note)

	education, note := educationScore(candidate)
	fired = append(fired, note)

	company, note := companyScore(candidate)
	fired = append(fired, note)

	location, note := locationScore(candidate, jobDescription)
	fired = append(fired, note)

	return Breakdown{
		TechnicalSkills:     clamp(technical),
		ExperienceLevel:     clamp(experience),
		EducationBackground: clamp(education),
		CompanyPrestige:     clamp(company),
		LocationFit:         clamp(location),
		Reasoning:           "Heuristic assessment: " + strings.Join(fired, "; ") + ".",
	}
}

// technicalScore counts distinct job-description keywords that also appear in
// the candidate's role, education and profile text.
func technicalScore(candidate profile.Candidate, jobDescription string) (int, string) {
	keywords := keywordSet(jobDescription)

	candidateText := strings.ToLower(strings.Join([]string{
		candidate.CurrentRole, candidate.Education, candidate.Headline, candidate.Snippet,
	}, " "))

	matches := 0
	for keyword := range keywords {
		if strings.Contains(candidateText, keyword) {
			matches++
		}
	}

	return 25 + 15*matches, fmt.Sprintf("%d skill keyword matches", matches)
}

func experienceScore(candidate profile.Candidate) (int, string) {
	role := strings.ToLower(candidate.CurrentRole + " " + candidate.Headline)

	switch {
	case containsAny(role, juniorMarkers):
		return 40, "junior-level role markers"
	case containsAny(role, seniorMarkers):
		return 90, "senior-level role markers"
	case containsAny(role, midMarkers):
		return 65, "mid-level role markers"
	default:
		return 50, "no seniority markers found"
	}
}

func educationScore(candidate profile.Candidate) (int, string) {
	education := strings.ToLower(candidate.Education + " " + candidate.Snippet)

	if containsAnyWord(education, eliteInstitutions) {
		return 95, "elite institution"
	}

	switch {
	case strings.Contains(education, "phd") || strings.Contains(education, "ph.d"):
		return 90, "doctoral degree"
	case strings.Contains(education, "master") || strings.Contains(education, "m.tech"):
		return 75, "master's degree"
	case strings.Contains(education, "bachelor") || strings.Contains(education, "b.tech"):
		return 65, "bachelor's degree"
	case strings.Contains(education, "university") || strings.Contains(education, "college") || strings.Contains(education, "institute"):
		return 60, "higher education mentioned"
	default:
		return 40, "education not specified"
	}
}

func companyScore(candidate profile.Candidate) (int, string) {
	if candidate.Company == "" || candidate.Company == profile.UnknownValue {
		return 40, "employer unknown"
	}

	company := strings.ToLower(candidate.Company)
	switch {
	case containsAny(company, topTierEmployers):
		return 95, fmt.Sprintf("top-tier employer %s", candidate.Company)
	case containsAny(company, strongEmployers):
		return 85, fmt.Sprintf("well-known employer %s", candidate.Company)
	default:
		return 60, fmt.Sprintf("employer %s", candidate.Company)
	}
}

func locationScore(candidate profile.Candidate, jobDescription string) (int, string) {
	if candidate.Location == "" || candidate.Location == profile.UnknownValue {
		return 40, "location unknown"
	}

	description := strings.ToLower(jobDescription)
	for part := range strings.SplitSeq(candidate.Location, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && strings.Contains(description, part) {
			return 90, "location matches job description"
		}
	}

	return 60, "no location conflict"
}

// keywordSet normalizes the job description into lowercase tokens, dropping
// stopwords and anything shorter than four characters.
func keywordSet(text string) map[string]struct{} {
	keywords := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '+' && r != '#'
	}) {
		if len(token) < 4 {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		keywords[token] = struct{}{}
	}
	return keywords
}

func containsAny(text string, table []string) bool {
	for _, entry := range table {
		if strings.Contains(text, entry) {
			return true
		}
	}
	return false
}

// containsAnyWord matches short table entries only on word boundaries to avoid
// false hits like "mit" inside "committee".
func containsAnyWord(text string, table []string) bool {
	words := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) {
		words[token] = struct{}{}
	}

	for _, entry := range table {
		if strings.Contains(entry, " ") {
			if strings.Contains(text, entry) {
				return true
			}
			continue
		}
		if _, ok := words[entry]; ok {
			return true
		}
	}
	return false
}
