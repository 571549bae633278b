package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/storage"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
)

const defaultRetentionDays = 30

// Sweeper discards drafts left behind on opportunities whose closing date
// passed longer ago than the retention window, along with their uploaded
// document blobs.
type Sweeper struct {
	blob      *storage.BlobStore
	interval  time.Duration
	retention time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewSweeper initializes a new Sweeper instance. DRAFT_RETENTION_DAYS
// overrides the default retention window.
func NewSweeper(blob *storage.BlobStore) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())

	retentionDays := defaultRetentionDays
	if raw := os.Getenv("DRAFT_RETENTION_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			retentionDays = parsed
		}
	}

	return &Sweeper{
		blob:      blob,
		interval:  24 * time.Hour,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start runs an immediate sweep and then repeats on the interval.
func (s *Sweeper) Start() {
	log.Println("Starting draft sweeper...")

	go func() {
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop shuts the sweeper down.
func (s *Sweeper) Stop() {
	log.Println("Stopping draft sweeper...")
	s.cancel()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.retention)

	var drafts []models.ApplicationDraft

	err := db.DB.
		Joins("JOIN funding_opportunities ON funding_opportunities.id = application_drafts.funding_opportunity_id").
		Where("funding_opportunities.closing_date IS NOT NULL AND funding_opportunities.closing_date < ?", cutoff).
		Find(&drafts).Error

	if err != nil {
		log.Printf("Draft sweep query failed: %v", err)
		return
	}

	if len(drafts) == 0 {
		return
	}

	for _, draft := range drafts {
		s.deleteDraftBlobs(draft)

		if err := db.DB.Unscoped().Delete(&models.ApplicationDraft{}, draft.ID).Error; err != nil {
			log.Printf("Failed to delete expired draft %d: %v", draft.ID, err)
		}
	}

	log.Printf("Draft sweep removed %d expired drafts", len(drafts))
}

// deleteDraftBlobs removes the draft's uploaded documents best-effort. A blob
// that outlives its draft only costs storage.
func (s *Sweeper) deleteDraftBlobs(draft models.ApplicationDraft) {
	if s.blob == nil || len(draft.Attachments) == 0 {
		return
	}

	var attachments []types.Attachment

	if err := json.Unmarshal(draft.Attachments, &attachments); err != nil {
		log.Printf("Failed to decode attachments for expired draft %d: %v", draft.ID, err)
		return
	}

	for _, attachment := range attachments {
		if attachment.Path == "" {
			continue
		}
		if err := s.blob.Delete(s.ctx, attachment.Path); err != nil {
			log.Printf("Failed to delete blob %s for expired draft %d: %v", attachment.Path, draft.ID, err)
		}
	}
}
