package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resumatch/internal/models"
)

// Input validation errors. Handlers map these to 400 responses; the
// pipeline refuses to run rather than produce an empty-but-successful
// result for a malformed request.
var (
	ErrNoDocuments       = errors.New("no documents supplied")
	ErrEmptyRequirements = errors.New("requirements text must not be empty")
	ErrInvalidThreshold  = errors.New("similarity threshold must be in (0,1]")
	ErrNegativeMinimum   = errors.New("minimum experience must not be negative")
)

// PipelineDocument pairs a stored document with its raw bytes.
type PipelineDocument struct {
	Document models.Document
	Data     []byte
}

// MatchSink persists an accepted resume under its assigned rank name.
type MatchSink interface {
	CopyToMatches(srcPath string, matchedName string) error
}

// PipelineOutcome is everything a run produces: the ranked results,
// per-document diagnostics, and the extracted text of each accepted
// resume (kept so the caller can index it).
type PipelineOutcome struct {
	Results       []models.MatchResult
	Diagnostics   []string
	AcceptedTexts map[uuid.UUID]string
}

// MatchingPipeline orchestrates a batch: extract, evaluate, assign
// rank names, copy accepted files, and rank by score.
type MatchingPipeline struct {
	extractor   TextExtractor
	evaluator   *CandidateEvaluator
	sink        MatchSink
	concurrency int
}

func NewMatchingPipeline(
	extractor TextExtractor,
	evaluator *CandidateEvaluator,
	sink MatchSink,
	concurrency int,
) *MatchingPipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MatchingPipeline{
		extractor:   extractor,
		evaluator:   evaluator,
		sink:        sink,
		concurrency: concurrency,
	}
}

// ValidateInput rejects malformed run parameters before any work.
func ValidateInput(docCount int, filters FilterCriteria, criteria MatchCriteria) error {
	if docCount == 0 {
		return ErrNoDocuments
	}
	if strings.TrimSpace(criteria.RequirementsText) == "" {
		return ErrEmptyRequirements
	}
	if criteria.SimilarityThreshold <= 0 || criteria.SimilarityThreshold > 1 {
		return ErrInvalidThreshold
	}
	if filters.Enabled && filters.MinExperience < 0 {
		return ErrNegativeMinimum
	}
	return nil
}

type docOutcome struct {
	text string
	eval Evaluation
}

// Run executes the batch. Documents are evaluated concurrently, but
// match ordinals and output names are assigned in a serial pass in
// submission order, so a run's names are deterministic regardless of
// completion order. The run-scoped counter restarts at 1 every run.
func (p *MatchingPipeline) Run(
	ctx context.Context,
	runID uuid.UUID,
	docs []PipelineDocument,
	filters FilterCriteria,
	criteria MatchCriteria,
) (*PipelineOutcome, error) {
	if err := ValidateInput(len(docs), filters, criteria); err != nil {
		return nil, err
	}

	// Fail the whole run before touching any document if the model
	// cannot score: a batch without similarity scores is meaningless.
	if err := p.evaluator.ProbeScorer(ctx, criteria.RequirementsText); err != nil {
		return nil, err
	}

	outcomes := make([]docOutcome, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range docs {
		g.Go(func() error {
			doc := docs[i]
			text := p.extractor.ExtractText(doc.Data, doc.Document.Format)
			outcomes[i] = docOutcome{
				text: text,
				eval: p.evaluator.Evaluate(gctx, text, filters, criteria),
			}
			// Per-document failures are isolated; they never abort
			// the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch evaluation failed: %w", err)
	}

	outcome := &PipelineOutcome{
		AcceptedTexts: make(map[uuid.UUID]string),
	}

	counter := 0
	for i, doc := range docs {
		o := outcomes[i]
		name := doc.Document.OriginalFileName

		if !o.eval.Accepted {
			if o.eval.Failed {
				outcome.Diagnostics = append(outcome.Diagnostics, fmt.Sprintf("%s: %s", name, o.eval.Reason))
			} else {
				log.Printf("⏭️  %s rejected: %s\n", name, o.eval.Reason)
			}
			continue
		}

		counter++
		matchedName := fmt.Sprintf("%06d_%.2f.%s", counter, o.eval.SimilarityScore, doc.Document.Format)

		// A copy failure is reported but never removes the result:
		// naming and ranking are independent of sink I/O.
		if err := p.sink.CopyToMatches(doc.Document.FilePath, matchedName); err != nil {
			outcome.Diagnostics = append(outcome.Diagnostics,
				fmt.Sprintf("%s: failed to copy to match folder as %s: %v", name, matchedName, err))
		}

		outcome.Results = append(outcome.Results, models.MatchResult{
			ID:               uuid.New(),
			MatchRunID:       runID,
			DocumentID:       doc.Document.ID,
			OriginalFileName: name,
			MatchedFilename:  matchedName,
			SimilarityScore:  o.eval.SimilarityScore,
			ExperienceYears:  o.eval.ExperienceYears,
			Education:        models.JoinEducation(o.eval.Education),
		})
		outcome.AcceptedTexts[doc.Document.ID] = o.text
	}

	// Rank by score descending; the stable sort keeps submission order
	// for ties. Rank order and naming order are deliberately decoupled.
	sort.SliceStable(outcome.Results, func(a, b int) bool {
		return outcome.Results[a].SimilarityScore > outcome.Results[b].SimilarityScore
	})
	for i := range outcome.Results {
		outcome.Results[i].Position = i + 1
	}

	return outcome, nil
}
