package scoring

import (
	"fmt"
	"math"

	"sourcing-agent/internal/profile"
)

// Weights applied to the five scoring dimensions. They sum to 1.0.
const (
	WeightTechnical  = 0.30
	WeightExperience = 0.25
	WeightEducation  = 0.20
	WeightCompany    = 0.15
	WeightLocation   = 0.10
)

// FitLevel buckets a numeric score into a label for human triage.
type FitLevel string

const (
	FitExcellent FitLevel = "Excellent"
	FitStrong    FitLevel = "Strong"
	FitGood      FitLevel = "Good"
	FitFair      FitLevel = "Fair"
	FitPoor      FitLevel = "Poor"
)

// Levels lists all fit levels from best to worst.
var Levels = []FitLevel{FitExcellent, FitStrong, FitGood, FitFair, FitPoor}

// Breakdown holds the five sub-scores, each in [0,100], and the free-text
// reasoning behind them.
type Breakdown struct {
	TechnicalSkills     int    `json:"technical_skills"`
	ExperienceLevel     int    `json:"experience_level"`
	EducationBackground int    `json:"education_background"`
	CompanyPrestige     int    `json:"company_prestige"`
	LocationFit         int    `json:"location_fit"`
	Reasoning           string `json:"reasoning"`
}

// ScoredCandidate is a profile with its computed fit. OutreachMessage is
// attached by the messaging stage and stays empty until then.
type ScoredCandidate struct {
	Profile         profile.Candidate
	Score           float64
	FitLevel        FitLevel
	Breakdown       Breakdown
	OutreachMessage string
	Highlights      []string
}

// Overall computes the weighted sum of the sub-scores, rounded to one decimal.
func Overall(b Breakdown) float64 {
	score := WeightTechnical*float64(b.TechnicalSkills) +
		WeightExperience*float64(b.ExperienceLevel) +
		WeightEducation*float64(b.EducationBackground) +
		WeightCompany*float64(b.CompanyPrestige) +
		WeightLocation*float64(b.LocationFit)

	return math.Round(score*10) / 10
}

// FitLevelFor maps a score to its bucket. Bounds are inclusive at the bottom:
// 80.0 is Excellent, 79.9 is Strong, 40.0 is Fair, 39.9 is Poor.
func FitLevelFor(score float64) FitLevel {
	switch {
	case score >= 80:
		return FitExcellent
	case score >= 70:
		return FitStrong
	case score >= 60:
		return FitGood
	case score >= 40:
		return FitFair
	default:
		return FitPoor
	}
}

// KeyHighlights builds the short list of selling points exported with each
// scored candidate.
func KeyHighlights(candidate profile.Candidate, score float64) []string {
	highlights := make([]string, 0, 3)

	if candidate.Company != "" && candidate.Company != profile.UnknownValue {
		highlights = append(highlights, fmt.Sprintf("Experience at %s", candidate.Company))
	}

	if score >= 70 {
		highlights = append(highlights, "Strong technical fit")
	}

	if candidate.Location != "" && candidate.Location != profile.UnknownValue {
		highlights = append(highlights, fmt.Sprintf("Located in %s", candidate.Location))
	}

	return highlights
}

func clamp(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
