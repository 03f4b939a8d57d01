package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// VectorIndex keeps embeddings of matched resumes so earlier matches
// can be searched by free text later.
type VectorIndex interface {
	InitCollection() error
	UpsertResume(ctx context.Context, docID uuid.UUID, filename string, text string, vector []float32) error
	SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]ResumeHit, error)
}

type ResumeHit struct {
	DocumentID string
	Filename   string
	Score      float32
	Snippet    string
}

// snippetLimit bounds the text stored in point payloads.
const snippetLimit = 500

type qdrantIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(urlStr, apiKey, collectionName string) (VectorIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements VectorIndex.
func (q *qdrantIndex) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Resume collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertResume implements VectorIndex. The document ID doubles as the
// point ID, so re-matching a resume updates its entry instead of
// duplicating it.
func (q *qdrantIndex) UpsertResume(ctx context.Context, docID uuid.UUID, filename string, text string, vector []float32) error {
	snippet := text
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(docID.String()),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"document_id": docID.String(),
			"filename":    filename,
			"snippet":     snippet,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert resume point: %w", err)
	}

	return nil
}

// SearchSimilar implements VectorIndex.
func (q *qdrantIndex) SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]ResumeHit, error) {
	if limit <= 0 {
		limit = 5
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search resumes: %w", err)
	}

	var hits []ResumeHit
	for _, point := range searchResult {
		hit := ResumeHit{Score: point.Score}

		payload := point.Payload
		if docID, ok := payload["document_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				hit.DocumentID = val.StringValue
			}
		}
		if filename, ok := payload["filename"]; ok {
			if val, ok := filename.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Filename = val.StringValue
			}
		}
		if snippet, ok := payload["snippet"]; ok {
			if val, ok := snippet.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Snippet = val.StringValue
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}
