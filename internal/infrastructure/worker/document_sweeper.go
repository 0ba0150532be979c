package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"go.uber.org/zap"
)

// DocumentSweeperConfig holds configuration for the document sweeper
type DocumentSweeperConfig struct {
	// Interval between sweeps
	Interval time.Duration

	// GracePeriod protects documents whose claim may still be in flight
	GracePeriod time.Duration
}

// Validate checks that the sweeper can run without racing in-flight submissions
func (c DocumentSweeperConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Interval)
	}
	if c.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be positive, got %s", c.GracePeriod)
	}
	return nil
}

// SweepResult summarizes one sweep
type SweepResult struct {
	Scanned int
	Removed int
	Failed  int
}

// DocumentSweeper removes stored documents that no claim references.
// These are left behind when a claim insert fails and the compensating
// delete also fails.
type DocumentSweeper struct {
	config    DocumentSweeperConfig
	documents port.DocumentInventory
	claims    port.ClaimRepository
	logger    *zap.Logger
	now       func() time.Time

	mu           sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
	isRunning    bool
	removedCount int
	lastSweep    time.Time
}

// NewDocumentSweeper creates a new document sweeper
func NewDocumentSweeper(
	config DocumentSweeperConfig,
	documents port.DocumentInventory,
	claims port.ClaimRepository,
	logger *zap.Logger,
) *DocumentSweeper {
	return &DocumentSweeper{
		config:    config,
		documents: documents,
		claims:    claims,
		logger:    logger,
		now:       time.Now,
	}
}

// Name returns the worker name for identification
func (w *DocumentSweeper) Name() string {
	return "DocumentSweeper"
}

// Start begins the sweep loop
func (w *DocumentSweeper) Start(ctx context.Context) error {
	if err := w.config.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("document sweeper already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("DocumentSweeper started",
		zap.Duration("interval", w.config.Interval),
		zap.Duration("grace_period", w.config.GracePeriod))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop terminates the loop and waits for an in-progress sweep to finish
func (w *DocumentSweeper) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.mu.Lock()
	removed := w.removedCount
	w.mu.Unlock()
	w.logger.Info("DocumentSweeper stopped", zap.Int("removed_count", removed))
	return nil
}

func (w *DocumentSweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.logger.Error("Document sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep deletes unreferenced documents older than the grace period
func (w *DocumentSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	if w.config.GracePeriod <= 0 {
		return result, fmt.Errorf("grace period must be positive, got %s", w.config.GracePeriod)
	}

	referenced, err := w.claims.DocumentKeys(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load referenced documents: %w", err)
	}

	docs, err := w.documents.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list documents: %w", err)
	}

	cutoff := w.now().Add(-w.config.GracePeriod)
	for _, doc := range docs {
		result.Scanned++
		if _, ok := referenced[doc.Key]; ok || doc.ModifiedAt.After(cutoff) {
			continue
		}

		if err := w.documents.Delete(ctx, doc.Key); err != nil {
			result.Failed++
			w.logger.Warn("Failed to remove orphaned document", zap.String("key", doc.Key), zap.Error(err))
			continue
		}
		result.Removed++
		w.logger.Info("Removed orphaned document", zap.String("key", doc.Key))
	}

	w.mu.Lock()
	w.removedCount += result.Removed
	w.lastSweep = w.now()
	w.mu.Unlock()

	return result, nil
}

// LastSweep returns when the last sweep completed
func (w *DocumentSweeper) LastSweep() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSweep
}
