package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"resumatch/internal/models"
	"resumatch/internal/services"
)

type SearchHandler struct {
	scorer *services.EmbeddingScorer
	index  services.VectorIndex
}

func NewSearchHandler(scorer *services.EmbeddingScorer, index services.VectorIndex) *SearchHandler {
	return &SearchHandler{
		scorer: scorer,
		index:  index,
	}
}

// HandleSearch finds previously matched resumes similar to a free-text
// query. Only resumes accepted by some completed run are indexed.
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	var req models.SearchRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query must not be empty",
		})
	}

	queryVector, err := h.scorer.Embed(c.Context(), req.Query)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Failed to embed query",
		})
	}

	hits, err := h.index.SearchSimilar(c.Context(), queryVector, req.Limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Resume search failed",
		})
	}

	response := models.SearchResponse{Hits: make([]models.SearchHit, 0, len(hits))}
	for _, hit := range hits {
		response.Hits = append(response.Hits, models.SearchHit{
			DocumentID: hit.DocumentID,
			Filename:   hit.Filename,
			Score:      hit.Score,
			Snippet:    hit.Snippet,
		})
	}

	return c.JSON(response)
}
