package pipeline

import (
	"fmt"
	"strings"
)

// Request is the immutable input for one sourcing run.
type Request struct {
	JobDescription string   `json:"job_description"`
	CandidateNames []string `json:"candidate_names"`
}

// InputError reports a malformed request. It is the only error Run surfaces
// to callers; everything downstream degrades into fallbacks instead.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the request before any external call is made.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.JobDescription) == "" {
		return &InputError{Field: "job_description", Reason: "must not be empty"}
	}

	if len(r.CandidateNames) == 0 {
		return &InputError{Field: "candidate_names", Reason: "at least one candidate name is required"}
	}

	for i, name := range r.CandidateNames {
		if strings.TrimSpace(name) == "" {
			return &InputError{Field: "candidate_names", Reason: fmt.Sprintf("name at position %d is blank", i)}
		}
	}

	return nil
}

// JobTitle extracts the job title from the first line of the description,
// dropping a trailing " - Company" part when present.
func (r *Request) JobTitle() string {
	lines := strings.Split(strings.TrimSpace(r.JobDescription), "\n")
	if len(lines) == 0 {
		return ""
	}

	title := lines[0]
	if idx := strings.Index(title, " - "); idx > 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}
