package services

import (
	"context"
	"fmt"
	"math"

	"resumatch/internal/models"
)

// FilterCriteria are the optional hard filters applied before scoring.
type FilterCriteria struct {
	Enabled           bool
	MinExperience     float64
	RequiredEducation []models.EducationLevel
}

// MatchCriteria is the semantic half of a run's configuration.
type MatchCriteria struct {
	RequirementsText    string
	SimilarityThreshold float64
}

// Evaluation is the outcome of screening a single resume text.
type Evaluation struct {
	Accepted bool
	// Reason explains a rejection.
	Reason string
	// Failed marks rejections caused by extraction or scoring problems
	// rather than by the document's content; these surface on the
	// run's diagnostics, ordinary rejections do not.
	Failed bool

	SimilarityScore float64
	ExperienceYears float64
	Education       []models.EducationLevel
}

// CandidateEvaluator combines extracted facts, the similarity score and
// the run configuration into an accept/reject decision.
type CandidateEvaluator struct {
	features FeatureExtractor
	scorer   SimilarityScorer
}

func NewCandidateEvaluator(features FeatureExtractor, scorer SimilarityScorer) *CandidateEvaluator {
	return &CandidateEvaluator{
		features: features,
		scorer:   scorer,
	}
}

// ProbeScorer verifies the similarity capability is usable before a
// batch starts. Scoring a text against itself embeds it exactly once.
func (e *CandidateEvaluator) ProbeScorer(ctx context.Context, text string) error {
	if _, err := e.scorer.Score(ctx, text, text); err != nil {
		return fmt.Errorf("similarity model unavailable: %w", err)
	}
	return nil
}

// Evaluate screens one resume text. Checks run cheapest first and
// short-circuit: empty text, then the hard filters, and only then the
// similarity score, so filtered-out resumes never hit the model.
func (e *CandidateEvaluator) Evaluate(ctx context.Context, text string, filters FilterCriteria, criteria MatchCriteria) Evaluation {
	if text == "" {
		return Evaluation{
			Reason: "no text could be extracted",
			Failed: true,
		}
	}

	experience := e.features.FindExperience(text)
	education := e.features.FindEducation(text)

	if filters.Enabled {
		if experience < filters.MinExperience {
			return Evaluation{
				Reason:          fmt.Sprintf("experience %.1f years below minimum %.1f", experience, filters.MinExperience),
				ExperienceYears: experience,
				Education:       education,
			}
		}

		if missing := missingEducation(filters.RequiredEducation, education); missing != "" {
			return Evaluation{
				Reason:          fmt.Sprintf("missing required education level %s", missing),
				ExperienceYears: experience,
				Education:       education,
			}
		}
	}

	score, err := e.scorer.Score(ctx, text, criteria.RequirementsText)
	if err != nil || score == nil {
		return Evaluation{
			Reason:          fmt.Sprintf("similarity scoring failed: %v", err),
			Failed:          true,
			ExperienceYears: experience,
			Education:       education,
		}
	}

	// Threshold compares the raw score; equality passes.
	if *score < criteria.SimilarityThreshold {
		return Evaluation{
			Reason:          fmt.Sprintf("similarity %.3f below threshold %.3f", *score, criteria.SimilarityThreshold),
			SimilarityScore: roundTo(*score, 3),
			ExperienceYears: experience,
			Education:       education,
		}
	}

	return Evaluation{
		Accepted:        true,
		SimilarityScore: roundTo(*score, 3),
		ExperienceYears: experience,
		Education:       education,
	}
}

// missingEducation returns the first required level the candidate
// lacks, or "" when required is a subset of held.
func missingEducation(required, held []models.EducationLevel) string {
	heldSet := make(map[models.EducationLevel]bool, len(held))
	for _, l := range held {
		heldSet[l] = true
	}
	for _, l := range required {
		if !heldSet[l] {
			return string(l)
		}
	}
	return ""
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
