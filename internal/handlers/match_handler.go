package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/internal/models"
	"resumatch/internal/repositories"
	"resumatch/internal/services"
)

type MatchHandler struct {
	runRepo repositories.MatchRunRepository
	docRepo repositories.DocumentRepository
	worker  services.Worker
}

func NewMatchHandler(
	runRepo repositories.MatchRunRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
) *MatchHandler {
	return &MatchHandler{
		runRepo: runRepo,
		docRepo: docRepo,
		worker:  worker,
	}
}

// HandleMatch handles POST /match: validates the request, creates a
// queued match run, and hands it to the worker. The response carries
// the run ID; results arrive asynchronously via GET /result/:id.
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	// Defaulting before validation: the threshold is optional.
	if req.SimilarityThreshold == 0 {
		req.SimilarityThreshold = 0.6
	}

	filters := services.FilterCriteria{}
	if req.Filters != nil && req.Filters.Enabled {
		filters.Enabled = true
		filters.MinExperience = req.Filters.MinExperience
		for _, raw := range req.Filters.RequiredEducation {
			level, err := models.ParseEducationLevel(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			filters.RequiredEducation = append(filters.RequiredEducation, level)
		}
	}

	criteria := services.MatchCriteria{
		RequirementsText:    req.RequirementsText,
		SimilarityThreshold: req.SimilarityThreshold,
	}

	if err := services.ValidateInput(len(req.DocumentIDs), filters, criteria); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Verify every document before creating the run.
	ids := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid document ID: %s", raw),
			})
		}
		if _, err := h.docRepo.FindByID(id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("document not found: %s", raw),
			})
		}
		ids = append(ids, id)
	}

	run := &models.MatchRun{
		ID:                  uuid.New(),
		RequirementsText:    req.RequirementsText,
		SimilarityThreshold: req.SimilarityThreshold,
		FiltersEnabled:      filters.Enabled,
		MinExperience:       filters.MinExperience,
		RequiredEducation:   models.JoinEducation(filters.RequiredEducation),
		DocumentIDs:         models.JoinDocumentIDs(ids),
		Status:              models.StatusQueued,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := h.runRepo.Create(run); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create match run",
		})
	}

	h.worker.EnqueueRun(run.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.MatchResponse{
		ID:     run.ID.String(),
		Status: string(models.StatusQueued),
	})
}
