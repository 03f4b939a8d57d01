package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/models"
)

// stubScorer returns canned scores keyed by the first text. Scoring a
// text against itself yields 1.0 so the pipeline's capability probe
// passes.
type stubScorer struct {
	mu     sync.Mutex
	calls  int
	scores map[string]float64
	err    error
}

func (s *stubScorer) Score(_ context.Context, a, b string) (*float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if a == b {
		v := 1.0
		return &v, nil
	}
	if v, ok := s.scores[a]; ok {
		return &v, nil
	}
	v := 0.0
	return &v, nil
}

func (s *stubScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestEvaluator(scorer SimilarityScorer) *CandidateEvaluator {
	return NewCandidateEvaluator(NewFeatureExtractor(), scorer)
}

func TestEvaluateEmptyTextRejectedWithoutScoring(t *testing.T) {
	scorer := &stubScorer{}
	e := newTestEvaluator(scorer)

	eval := e.Evaluate(context.Background(), "", FilterCriteria{}, MatchCriteria{
		RequirementsText:    "golang developer",
		SimilarityThreshold: 0.6,
	})

	assert.False(t, eval.Accepted)
	assert.True(t, eval.Failed)
	assert.Equal(t, 0, scorer.callCount(), "empty text must not reach the scorer")
}

func TestEvaluateFiltersRunBeforeScoring(t *testing.T) {
	scorer := &stubScorer{}
	e := newTestEvaluator(scorer)

	filters := FilterCriteria{Enabled: true, MinExperience: 5}
	criteria := MatchCriteria{RequirementsText: "golang developer", SimilarityThreshold: 0.6}

	eval := e.Evaluate(context.Background(), "2 years of Go. B.Tech.", filters, criteria)

	assert.False(t, eval.Accepted)
	assert.False(t, eval.Failed)
	assert.Equal(t, 0, scorer.callCount(), "filtered-out resumes must never hit the model")
	assert.InDelta(t, 2.0, eval.ExperienceYears, 1e-9)
}

func TestEvaluateEducationIsStrictSubsetTest(t *testing.T) {
	scorer := &stubScorer{scores: map[string]float64{}}
	e := newTestEvaluator(scorer)

	filters := FilterCriteria{
		Enabled:           true,
		RequiredEducation: []models.EducationLevel{models.EducationMasters},
	}
	criteria := MatchCriteria{RequirementsText: "data scientist", SimilarityThreshold: 0.1}

	// UG only, even with passing experience and a scorer that would
	// pass, is rejected by the subset test.
	text := "10 years experience. B.Tech in CS."
	scorer.scores = map[string]float64{text: 0.95}

	eval := e.Evaluate(context.Background(), text, filters, criteria)

	assert.False(t, eval.Accepted)
	assert.Contains(t, eval.Reason, "Masters")
	assert.Equal(t, 0, scorer.callCount())
}

func TestEvaluateThresholdBoundaryAccepts(t *testing.T) {
	text := "3 years of Go"
	scorer := &stubScorer{scores: map[string]float64{text: 0.6}}
	e := newTestEvaluator(scorer)

	criteria := MatchCriteria{RequirementsText: "golang developer", SimilarityThreshold: 0.6}

	eval := e.Evaluate(context.Background(), text, FilterCriteria{}, criteria)

	assert.True(t, eval.Accepted, "score equal to threshold must pass")
	assert.Equal(t, 0.6, eval.SimilarityScore)
}

func TestEvaluateScoreRoundedToThreeDecimals(t *testing.T) {
	text := "4 years of Go"
	scorer := &stubScorer{scores: map[string]float64{text: 0.73456}}
	e := newTestEvaluator(scorer)

	criteria := MatchCriteria{RequirementsText: "golang developer", SimilarityThreshold: 0.5}

	eval := e.Evaluate(context.Background(), text, FilterCriteria{}, criteria)

	require.True(t, eval.Accepted)
	assert.Equal(t, 0.735, eval.SimilarityScore)
}

func TestEvaluateScoringFailureIsDiagnosticRejection(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model offline")}
	e := newTestEvaluator(scorer)

	criteria := MatchCriteria{RequirementsText: "golang developer", SimilarityThreshold: 0.6}

	eval := e.Evaluate(context.Background(), "5 years of Go", FilterCriteria{}, criteria)

	assert.False(t, eval.Accepted)
	assert.True(t, eval.Failed)
	assert.Contains(t, eval.Reason, "model offline")
}

func TestEvaluateDisabledFiltersIgnoreCriteria(t *testing.T) {
	text := "fresh graduate, 6 months internship"
	scorer := &stubScorer{scores: map[string]float64{text: 0.8}}
	e := newTestEvaluator(scorer)

	filters := FilterCriteria{
		Enabled:           false,
		MinExperience:     10,
		RequiredEducation: []models.EducationLevel{models.EducationPG},
	}
	criteria := MatchCriteria{RequirementsText: "junior role", SimilarityThreshold: 0.6}

	eval := e.Evaluate(context.Background(), text, filters, criteria)

	assert.True(t, eval.Accepted)
	assert.InDelta(t, 0.5, eval.ExperienceYears, 1e-9)
}

func TestProbeScorer(t *testing.T) {
	e := newTestEvaluator(&stubScorer{})
	assert.NoError(t, e.ProbeScorer(context.Background(), "requirements"))

	e = newTestEvaluator(&stubScorer{err: errors.New("no api key")})
	err := e.ProbeScorer(context.Background(), "requirements")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity model unavailable")
}
