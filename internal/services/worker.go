package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-optimizer/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueRun(runID uuid.UUID)
}

type worker struct {
	runRepo     repositories.RunRepository
	pipeline    PipelineService
	runQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewWorker(
	runRepo repositories.RunRepository,
	pipeline PipelineService,
	concurrency int,
) Worker {
	return &worker{
		runRepo:     runRepo,
		pipeline:    pipeline,
		runQueue:    make(chan uuid.UUID, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	// Start worker goroutines
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processRuns(ctx, i+1)
	}

	// Start polling for queued runs
	w.wg.Add(1)
	go w.pollQueuedRuns(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueRun implements Worker.
func (w *worker) EnqueueRun(runID uuid.UUID) {
	select {
	case w.runQueue <- runID:
		log.Printf("📥 Run %s enqueued\n", runID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue run %s\n", runID)
	}
}

func (w *worker) processRuns(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing runs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case runID := <-w.runQueue:
			log.Printf("👷 Worker #%d processing run %s\n", workerID, runID)
			if err := w.pipeline.Run(ctx, runID); err != nil {
				log.Printf("❌ Worker #%d failed to process run %s: %v\n", workerID, runID, err)
			} else {
				log.Printf("✅ Worker #%d completed run %s\n", workerID, runID)
			}
		}
	}
}

func (w *worker) pollQueuedRuns(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Println("🔄 Starting queued runs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Queued runs poller stopped")
			return
		case <-ticker.C:
			// Pick up runs that were created but never enqueued, e.g.
			// after a restart.
			pendingRuns, err := w.runRepo.FindPendingRuns(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending runs: %v\n", err)
				continue
			}

			if len(pendingRuns) > 0 {
				log.Printf("📋 Found %d pending runs\n", len(pendingRuns))
			}

			for _, run := range pendingRuns {
				w.EnqueueRun(run.ID)
			}
		}
	}
}
