package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

// VectorCacheService is a write-through cache for embeddings keyed by a
// content hash. The rescorer re-embeds sections whose text is unchanged, so
// identical text must come back as the identical vector; the cache makes
// that cheap and exact.
type VectorCacheService interface {
	InitCollection() error
	Fetch(ctx context.Context, key uint64) ([]float32, bool, error)
	Store(ctx context.Context, key uint64, model string, vector []float32) error
}

type vectorCacheService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewVectorCacheService(urlStr, apiKey, collectionName string) (VectorCacheService, error) {
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

	return &vectorCacheService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements VectorCacheService.
func (q *vectorCacheService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Embedding cache collection already exists")
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

	log.Printf("✅ Embedding cache collection '%s' created successfully\n", q.collectionName)
	return nil
}

// Fetch implements VectorCacheService.
func (q *vectorCacheService) Fetch(ctx context.Context, key uint64) ([]float32, bool, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDNum(key)},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch cached embedding: %w", err)
	}

	if len(points) == 0 {
		return nil, false, nil
	}

	vector := points[0].GetVectors().GetVector().GetData()
	if len(vector) == 0 {
		return nil, false, nil
	}

	return vector, true, nil
}

// Store implements VectorCacheService.
func (q *vectorCacheService) Store(ctx context.Context, key uint64, model string, vector []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(key),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"model": model,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}
