package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"alfredoptarigan/cv-optimizer/internal/config"
	"alfredoptarigan/cv-optimizer/internal/services"
)

// Runs the full optimization pipeline over a CV file and a job description
// file, printing the report as JSON. No database or server required:
//
//	go run scripts/run_pipeline.go cv.pdf job.txt
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <cv-file> <job-file>\n", os.Args[0])
		os.Exit(1)
	}
	cvPath := os.Args[1]
	jobPath := os.Args[2]

	log.Println("🚀 Starting CV optimization pipeline...")

	// Load configuration
	cfg := config.Load()

	// Initialize services
	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbeddingModel,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	// The embedding cache is optional here; a missing Qdrant just means
	// every embedding is computed fresh.
	var vectorCache services.VectorCacheService
	cache, err := services.NewVectorCacheService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err == nil {
		err = cache.InitCollection()
	}
	if err != nil {
		log.Printf("⚠️  Qdrant unavailable, running without embedding cache: %v", err)
	} else {
		vectorCache = cache
	}

	embeddingService := services.NewEmbeddingService(geminiService, vectorCache, cfg.Gemini.EmbeddingModel)
	extractorService := services.NewExtractorService()
	parserService := services.NewParserService(geminiService)
	matcherService := services.NewMatcherService(embeddingService, geminiService)
	explainerService := services.NewExplainerService(geminiService)
	rewriterService := services.NewRewriterService(geminiService)
	validatorService := services.NewValidatorService()
	rescorerService := services.NewRescorerService(matcherService)
	reporterService := services.NewReporterService(geminiService, cfg.Worker.RetryMaxAttempts)

	pipelineService := services.NewPipelineService(
		nil,
		nil,
		extractorService,
		parserService,
		matcherService,
		explainerService,
		rewriterService,
		validatorService,
		rescorerService,
		reporterService,
	)

	ctx := context.Background()

	log.Printf("📄 Extracting CV from %s...", cvPath)
	cvText, err := extractorService.ExtractFile(cvPath)
	if err != nil {
		log.Fatalf("❌ Failed to extract CV: %v", err)
	}

	log.Printf("📄 Extracting job description from %s...", jobPath)
	jobText, err := extractorService.ExtractFile(jobPath)
	if err != nil {
		log.Fatalf("❌ Failed to extract job description: %v", err)
	}

	result, err := pipelineService.Optimize(ctx, cvText, jobText)
	if err != nil {
		log.Fatalf("❌ Pipeline failed: %v", err)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("❌ Failed to serialize result: %v", err)
	}

	fmt.Println(string(output))

	log.Printf("✅ Done. Score %.4f -> %.4f (delta %+.4f)",
		result.Report.ImprovedScore.Before.Overall,
		result.Report.ImprovedScore.After.Overall,
		result.Report.ImprovedScore.Delta,
	)
}
