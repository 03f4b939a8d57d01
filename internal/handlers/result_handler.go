package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/internal/models"
	"resumatch/internal/repositories"
	"resumatch/internal/services"
)

type ResultHandler struct {
	runRepo        repositories.MatchRunRepository
	storageService services.StorageService
}

func NewResultHandler(
	runRepo repositories.MatchRunRepository,
	storageService services.StorageService,
) *ResultHandler {
	return &ResultHandler{
		runRepo:        runRepo,
		storageService: storageService,
	}
}

// HandleGetResult returns a run's status, and for completed runs the
// ranked candidate list plus any per-document diagnostics.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	idParam := c.Params("id")
	runID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid match run ID format",
		})
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Match run not found",
		})
	}

	response := models.ResultResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
	}

	if run.Status == models.StatusCompleted {
		results, err := h.runRepo.FindResults(runID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load match results",
			})
		}

		response.Results = make([]models.CandidateResultData, 0, len(results))
		for _, r := range results {
			education := []string{}
			for _, l := range models.SplitEducation(r.Education) {
				education = append(education, string(l))
			}
			response.Results = append(response.Results, models.CandidateResultData{
				OriginalFilename: r.OriginalFileName,
				MatchedFilename:  r.MatchedFilename,
				SimilarityScore:  r.SimilarityScore,
				ExperienceYears:  r.ExperienceYears,
				Education:        education,
			})
		}

		if run.Diagnostics != "" {
			response.Diagnostics = strings.Split(run.Diagnostics, "\n")
		}
	}

	if run.Status == models.StatusFailed && run.ErrorMessage != "" {
		response.ErrorMessage = &run.ErrorMessage
	}

	return c.JSON(response)
}

// HandleGetMatchedFile serves a matched (renamed) resume copy from the
// match folder.
func (h *ResultHandler) HandleGetMatchedFile(c *fiber.Ctx) error {
	filename := c.Params("filename")

	filePath, err := h.storageService.MatchFilePath(filename)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Matched file not found",
		})
	}

	return c.Download(filePath)
}
