package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"resumatch/internal/models"
	"resumatch/internal/repositories"
)

// MatcherService drives one queued match run end to end: load the run
// and its documents, execute the pipeline, persist the ranked results,
// and index accepted resumes for later lookup.
type MatcherService interface {
	RunMatch(ctx context.Context, runID uuid.UUID) error
}

type matcherService struct {
	runRepo  repositories.MatchRunRepository
	docRepo  repositories.DocumentRepository
	storage  StorageService
	pipeline *MatchingPipeline
	scorer   *EmbeddingScorer
	index    VectorIndex
}

func NewMatcherService(
	runRepo repositories.MatchRunRepository,
	docRepo repositories.DocumentRepository,
	storage StorageService,
	pipeline *MatchingPipeline,
	scorer *EmbeddingScorer,
	index VectorIndex,
) MatcherService {
	return &matcherService{
		runRepo:  runRepo,
		docRepo:  docRepo,
		storage:  storage,
		pipeline: pipeline,
		scorer:   scorer,
		index:    index,
	}
}

func (m *matcherService) RunMatch(ctx context.Context, runID uuid.UUID) error {
	if err := m.runRepo.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting match run %s\n", runID)

	run, err := m.runRepo.FindByID(runID)
	if err != nil {
		m.runRepo.UpdateError(runID, err.Error())
		return fmt.Errorf("failed to get match run: %w", err)
	}

	ids, err := run.DocumentIDList()
	if err != nil {
		m.runRepo.UpdateError(runID, err.Error())
		return err
	}

	docs, err := m.docRepo.FindByIDs(ids)
	if err != nil {
		m.runRepo.UpdateError(runID, fmt.Sprintf("documents not found: %v", err))
		return fmt.Errorf("failed to get documents: %w", err)
	}

	pipelineDocs := make([]PipelineDocument, 0, len(docs))
	for _, doc := range docs {
		data, err := m.storage.ReadFile(doc.FilePath)
		if err != nil {
			// Unreadable files degrade to empty text and get skipped
			// with a diagnostic, like any other extraction failure.
			log.Printf("⚠️  Failed to read %s: %v\n", doc.OriginalFileName, err)
			data = nil
		}
		pipelineDocs = append(pipelineDocs, PipelineDocument{Document: doc, Data: data})
	}

	filters := FilterCriteria{
		Enabled:           run.FiltersEnabled,
		MinExperience:     run.MinExperience,
		RequiredEducation: models.SplitEducation(run.RequiredEducation),
	}
	criteria := MatchCriteria{
		RequirementsText:    run.RequirementsText,
		SimilarityThreshold: run.SimilarityThreshold,
	}

	outcome, err := m.pipeline.Run(ctx, runID, pipelineDocs, filters, criteria)
	if err != nil {
		m.runRepo.UpdateError(runID, err.Error())
		return fmt.Errorf("match pipeline failed: %w", err)
	}

	if err := m.runRepo.CompleteRun(runID, outcome.Results, strings.Join(outcome.Diagnostics, "\n")); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	log.Printf("✅ Match run %s completed: %d of %d resumes matched\n", runID, len(outcome.Results), len(docs))

	m.indexMatches(ctx, outcome)

	return nil
}

// indexMatches upserts accepted resumes into the vector index so they
// become searchable. Failures here are logged only; the run already
// completed.
func (m *matcherService) indexMatches(ctx context.Context, outcome *PipelineOutcome) {
	if m.index == nil {
		return
	}

	for _, result := range outcome.Results {
		text, ok := outcome.AcceptedTexts[result.DocumentID]
		if !ok {
			continue
		}

		// Served from the scorer cache: the pipeline already embedded
		// this text while scoring.
		vector, err := m.scorer.Embed(ctx, text)
		if err != nil {
			log.Printf("⚠️  Failed to embed %s for indexing: %v\n", result.OriginalFileName, err)
			continue
		}

		if err := m.index.UpsertResume(ctx, result.DocumentID, result.OriginalFileName, text, vector); err != nil {
			log.Printf("⚠️  Failed to index %s: %v\n", result.OriginalFileName, err)
		}
	}
}
