package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"resumatch/internal/models"
)

// FeatureExtractor derives structured candidate facts from resume text.
// Both extractions are pure, case-insensitive pattern matches over the
// full text.
type FeatureExtractor interface {
	FindExperience(text string) float64
	FindEducation(text string) []models.EducationLevel
}

type featureExtractor struct{}

func NewFeatureExtractor() FeatureExtractor {
	return &featureExtractor{}
}

var (
	yearPattern  = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*\+?\s*years?`)
	monthPattern = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*months?`)
)

// Education pattern groups run against lowercased text. The groups are
// independent: a resume can contribute UG, Masters and PG at once.
var (
	ugPatterns = []*regexp.Regexp{
		regexp.MustCompile(`bachelor\s*of\s*technology`),
		regexp.MustCompile(`bachelor\s*of\s*engineering`),
		regexp.MustCompile(`\b(b\.?e\.?|b\.?tech\.?|b\.?sc\.?|bca|bba)\b`),
		regexp.MustCompile(`\b(bachelor|undergraduate|diploma)\b`),
	}
	mastersPatterns = []*regexp.Regexp{
		regexp.MustCompile(`master\s*of\s*science`),
		regexp.MustCompile(`master\s*of\s*technology`),
		regexp.MustCompile(`\b(m\.?s\.?|m\.?e\.?|m\.?tech\.?|mca|mba)\b`),
		regexp.MustCompile(`\b(master|postgraduate|pg\s*diploma)\b`),
	}
	pgPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(ph\.?d|doctorate|doctoral)\b`),
	}
)

// FindExperience returns the maximum years of experience mentioned in
// the text, rounded to one decimal place.
//
// Resumes state durations inconsistently ("5+ years", "5 years 3
// months", the same figure repeated in several sections), so this takes
// the maximum of all year mentions plus the maximum of all month
// mentions divided by 12, rather than summing occurrences. A known
// heuristic: "3 years 6 months" and "3 years" + an unrelated "6 months"
// are indistinguishable.
func (f *featureExtractor) FindExperience(text string) float64 {
	total := 0.0

	if matches := yearPattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		maxYears := 0.0
		for _, m := range matches {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > maxYears {
				maxYears = v
			}
		}
		total = maxYears
	}

	if matches := monthPattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		maxMonths := 0.0
		for _, m := range matches {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > maxMonths {
				maxMonths = v
			}
		}
		total += maxMonths / 12.0
	}

	return math.Round(total*10) / 10
}

// FindEducation returns the set of qualification tiers the text shows,
// sorted for deterministic output. Each pattern group contributes its
// level if any of its patterns matches anywhere.
func (f *featureExtractor) FindEducation(text string) []models.EducationLevel {
	lower := strings.ToLower(text)

	var levels []models.EducationLevel
	if anyMatch(ugPatterns, lower) {
		levels = append(levels, models.EducationUG)
	}
	if anyMatch(mastersPatterns, lower) {
		levels = append(levels, models.EducationMasters)
	}
	if anyMatch(pgPatterns, lower) {
		levels = append(levels, models.EducationPG)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
