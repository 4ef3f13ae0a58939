package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/service"
)

// DraftCleanupWorker purges stale auto-saved drafts periodically.
// Manual and submitted drafts are never touched.
type DraftCleanupWorker struct {
	draftService *service.DraftService
	interval     time.Duration
	maxAge       time.Duration
}

// NewDraftCleanupWorker constructs a DraftCleanupWorker.
func NewDraftCleanupWorker(draftService *service.DraftService, interval, maxAge time.Duration) *DraftCleanupWorker {
	return &DraftCleanupWorker{
		draftService: draftService,
		interval:     interval,
		maxAge:       maxAge,
	}
}

// Start begins the periodic cleanup loop until context is canceled.
func (w *DraftCleanupWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("max_age", w.maxAge).Msg("Starting draft cleanup worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Draft cleanup worker stopped")
			return
		}
	}
}

func (w *DraftCleanupWorker) run(ctx context.Context) {
	purged, err := w.draftService.CleanupStaleAuto(ctx, w.maxAge)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clean up stale drafts")
		return
	}
	if purged > 0 {
		log.Info().Int64("count", purged).Msg("Purged stale auto-saved drafts")
	}
}
