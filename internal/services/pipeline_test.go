package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/models"
)

// passthroughExtractor treats the document bytes as the extracted text,
// so tests can express resumes as plain strings.
type passthroughExtractor struct{}

func (passthroughExtractor) ExtractText(data []byte, _ models.DocumentFormat) string {
	return string(data)
}

// recordingSink captures copy calls, optionally failing them all.
type recordingSink struct {
	mu     sync.Mutex
	copies []string
	fail   bool
}

func (s *recordingSink) CopyToMatches(_ string, matchedName string) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copies = append(s.copies, matchedName)
	return nil
}

func testDoc(filename string, format models.DocumentFormat, text string) PipelineDocument {
	return PipelineDocument{
		Document: models.Document{
			ID:               uuid.New(),
			OriginalFileName: filename,
			Format:           format,
			FilePath:         "/uploads/" + filename,
		},
		Data: []byte(text),
	}
}

func newTestPipeline(scorer SimilarityScorer, sink MatchSink, concurrency int) *MatchingPipeline {
	evaluator := NewCandidateEvaluator(NewFeatureExtractor(), scorer)
	return NewMatchingPipeline(passthroughExtractor{}, evaluator, sink, concurrency)
}

func TestPipelineEndToEnd(t *testing.T) {
	textA := "Senior engineer with 5 years of experience. B.Tech in Computer Science."
	textB := "Fresh hire with 1 year of support work."

	scorer := &stubScorer{scores: map[string]float64{
		textA: 0.72,
		textB: 0.65,
	}}
	sink := &recordingSink{}
	p := newTestPipeline(scorer, sink, 1)

	docs := []PipelineDocument{
		testDoc("alice.pdf", models.FormatPDF, textA),
		testDoc("bob.pdf", models.FormatPDF, textB),
	}

	filters := FilterCriteria{
		Enabled:           true,
		MinExperience:     2,
		RequiredEducation: []models.EducationLevel{models.EducationUG},
	}
	criteria := MatchCriteria{RequirementsText: "experienced engineer", SimilarityThreshold: 0.6}

	outcome, err := p.Run(context.Background(), uuid.New(), docs, filters, criteria)
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1)
	result := outcome.Results[0]
	assert.Equal(t, "alice.pdf", result.OriginalFileName)
	assert.Equal(t, "000001_0.72.pdf", result.MatchedFilename)
	assert.Equal(t, 0.72, result.SimilarityScore)
	assert.InDelta(t, 5.0, result.ExperienceYears, 1e-9)
	assert.Equal(t, "UG", result.Education)
	assert.Equal(t, 1, result.Position)

	assert.Equal(t, []string{"000001_0.72.pdf"}, sink.copies)
	assert.Empty(t, outcome.Diagnostics, "an ordinary rejection is not a diagnostic")
}

func TestPipelineNamingOrderDecoupledFromRankOrder(t *testing.T) {
	textLow := "3 years of Go"
	textHigh := "8 years of Go"

	scorer := &stubScorer{scores: map[string]float64{
		textLow:  0.65,
		textHigh: 0.80,
	}}
	p := newTestPipeline(scorer, &recordingSink{}, 1)

	docs := []PipelineDocument{
		testDoc("first.pdf", models.FormatPDF, textLow),
		testDoc("second.docx", models.FormatDOCX, textHigh),
	}
	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5}

	outcome, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2)

	// Names follow submission order among accepted documents; the
	// extension follows the original format.
	byName := map[string]string{
		outcome.Results[0].OriginalFileName: outcome.Results[0].MatchedFilename,
		outcome.Results[1].OriginalFileName: outcome.Results[1].MatchedFilename,
	}
	assert.Equal(t, "000001_0.65.pdf", byName["first.pdf"])
	assert.Equal(t, "000002_0.80.docx", byName["second.docx"])

	// Ranking is by score descending, independent of the names.
	assert.Equal(t, "second.docx", outcome.Results[0].OriginalFileName)
	assert.Equal(t, 1, outcome.Results[0].Position)
	assert.Equal(t, "first.pdf", outcome.Results[1].OriginalFileName)
	assert.Equal(t, 2, outcome.Results[1].Position)
}

func TestPipelineTiesKeepSubmissionOrder(t *testing.T) {
	textA := "4 years of Go at Acme"
	textB := "4 years of Go at Globex"

	scorer := &stubScorer{scores: map[string]float64{
		textA: 0.7,
		textB: 0.7,
	}}
	p := newTestPipeline(scorer, &recordingSink{}, 1)

	docs := []PipelineDocument{
		testDoc("a.pdf", models.FormatPDF, textA),
		testDoc("b.pdf", models.FormatPDF, textB),
	}
	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5}

	outcome, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, "a.pdf", outcome.Results[0].OriginalFileName)
	assert.Equal(t, "b.pdf", outcome.Results[1].OriginalFileName)
}

func TestPipelineEmptyTextSkippedWithDiagnostic(t *testing.T) {
	scorer := &stubScorer{}
	p := newTestPipeline(scorer, &recordingSink{}, 1)

	docs := []PipelineDocument{
		testDoc("broken.pdf", models.FormatPDF, ""),
	}
	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5}

	outcome, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
	require.NoError(t, err)

	assert.Empty(t, outcome.Results)
	require.Len(t, outcome.Diagnostics, 1)
	assert.Contains(t, outcome.Diagnostics[0], "broken.pdf")
	assert.Contains(t, outcome.Diagnostics[0], "no text could be extracted")
}

func TestPipelineCopyFailureKeepsResult(t *testing.T) {
	text := "6 years of Go"
	scorer := &stubScorer{scores: map[string]float64{text: 0.9}}
	p := newTestPipeline(scorer, &recordingSink{fail: true}, 1)

	docs := []PipelineDocument{testDoc("kept.pdf", models.FormatPDF, text)}
	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5}

	outcome, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1, "sink failure must not drop the result")
	assert.Equal(t, "000001_0.90.pdf", outcome.Results[0].MatchedFilename)
	require.Len(t, outcome.Diagnostics, 1)
	assert.Contains(t, outcome.Diagnostics[0], "disk full")
}

func TestPipelineInputValidation(t *testing.T) {
	p := newTestPipeline(&stubScorer{}, &recordingSink{}, 1)
	ctx := context.Background()
	doc := testDoc("a.pdf", models.FormatPDF, "5 years")

	_, err := p.Run(ctx, uuid.New(), nil, FilterCriteria{},
		MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5})
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = p.Run(ctx, uuid.New(), []PipelineDocument{doc}, FilterCriteria{},
		MatchCriteria{RequirementsText: "   ", SimilarityThreshold: 0.5})
	assert.ErrorIs(t, err, ErrEmptyRequirements)

	_, err = p.Run(ctx, uuid.New(), []PipelineDocument{doc}, FilterCriteria{},
		MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0})
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = p.Run(ctx, uuid.New(), []PipelineDocument{doc}, FilterCriteria{},
		MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 1.5})
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = p.Run(ctx, uuid.New(), []PipelineDocument{doc},
		FilterCriteria{Enabled: true, MinExperience: -1},
		MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5})
	assert.ErrorIs(t, err, ErrNegativeMinimum)
}

func TestPipelineUnavailableModelFailsRunBeforeAnyDocument(t *testing.T) {
	scorer := &stubScorer{err: errors.New("quota exceeded")}
	p := newTestPipeline(scorer, &recordingSink{}, 1)

	docs := []PipelineDocument{testDoc("a.pdf", models.FormatPDF, "5 years")}
	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5}

	_, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity model unavailable")
	assert.Equal(t, 1, scorer.callCount(), "only the probe may have run")
}

func TestPipelineConcurrentRunIsDeterministic(t *testing.T) {
	scores := map[string]float64{}
	var docs []PipelineDocument
	for i := 0; i < 8; i++ {
		text := fmt.Sprintf("candidate %d with %d years of Go", i, i+1)
		scores[text] = 0.5 + float64(i)*0.05
		docs = append(docs, testDoc(fmt.Sprintf("cv%d.pdf", i), models.FormatPDF, text))
	}

	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.6}

	run := func() *PipelineOutcome {
		p := newTestPipeline(&stubScorer{scores: scores}, &recordingSink{}, 4)
		outcome, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
		require.NoError(t, err)
		return outcome
	}

	first := run()
	second := run()

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].OriginalFileName, second.Results[i].OriginalFileName)
		assert.Equal(t, first.Results[i].MatchedFilename, second.Results[i].MatchedFilename)
		assert.Equal(t, first.Results[i].Position, second.Results[i].Position)
	}
}

func TestPipelineCounterRestartsPerRun(t *testing.T) {
	text := "5 years of Go"
	criteria := MatchCriteria{RequirementsText: "golang", SimilarityThreshold: 0.5}
	docs := []PipelineDocument{testDoc("a.pdf", models.FormatPDF, text)}

	p := newTestPipeline(&stubScorer{scores: map[string]float64{text: 0.8}}, &recordingSink{}, 1)

	for i := 0; i < 2; i++ {
		outcome, err := p.Run(context.Background(), uuid.New(), docs, FilterCriteria{}, criteria)
		require.NoError(t, err)
		require.Len(t, outcome.Results, 1)
		assert.Equal(t, "000001_0.80.pdf", outcome.Results[0].MatchedFilename)
	}
}
