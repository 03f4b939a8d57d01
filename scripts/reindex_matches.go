package main

import (
	"context"
	"log"

	"resumatch/internal/config"
	"resumatch/internal/models"
	"resumatch/internal/services"
)

// Rebuilds the Qdrant resume index from the database: re-extracts and
// re-embeds every resume that appears in a completed match run. Useful
// after changing the embedding model or wiping the collection.
func main() {
	log.Println("🚀 Starting resume reindex...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	embedder, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	scorer := services.NewEmbeddingScorer(embedder)

	resumeIndex, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if err := resumeIndex.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}

	storage := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MatchPath)
	extractor := services.NewTextExtractor()

	var results []models.MatchResult
	if err := db.Distinct("document_id", "original_file_name").Find(&results).Error; err != nil {
		log.Fatalf("❌ Failed to load match results: %v", err)
	}
	log.Printf("📋 Found %d matched resumes\n", len(results))

	ctx := context.Background()
	indexed := 0
	for _, result := range results {
		var doc models.Document
		if err := db.Where("id = ?", result.DocumentID).First(&doc).Error; err != nil {
			log.Printf("⚠️  Document %s not found, skipping\n", result.DocumentID)
			continue
		}

		data, err := storage.ReadFile(doc.FilePath)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", doc.OriginalFileName, err)
			continue
		}

		text := extractor.ExtractText(data, doc.Format)
		if text == "" {
			log.Printf("⚠️  No text extracted from %s, skipping\n", doc.OriginalFileName)
			continue
		}

		vector, err := scorer.Embed(ctx, text)
		if err != nil {
			log.Printf("⚠️  Failed to embed %s: %v\n", doc.OriginalFileName, err)
			continue
		}

		if err := resumeIndex.UpsertResume(ctx, doc.ID, doc.OriginalFileName, text, vector); err != nil {
			log.Printf("⚠️  Failed to index %s: %v\n", doc.OriginalFileName, err)
			continue
		}

		indexed++
	}

	log.Printf("✅ Reindex complete: %d of %d resumes indexed\n", indexed, len(results))
}
