// Package syncer keeps the derived copies of item state consistent with the
// authoritative store. Every committed item write (promotion, approval,
// rejection, report flagging) publishes an ItemChange; a worker consumes the
// queue and runs two independent, idempotent handlers per change:
//
//   - index sync: an item is present in the search index exactly while its
//     status is approved. Approved-after → upsert; approved-before and not
//     approved-after (including deletion) → delete; everything else no-op.
//   - venue recount: for each venue referenced by the before/after states
//     (at most two), recompute item_count as the exact number of approved
//     items and write it unconditionally.
//
// Delivery is at-least-once and order-unaware. Both handlers are full
// recomputations from current store state, so a duplicated or reordered
// change converges to the same result. Handler failures are logged and
// counted, never surfaced to the caller that produced the write; the next
// change touching the same entity repairs the copy.
package syncer

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
	"github.com/qrmenu/go-catalog-backend/internal/search"
)

var (
	syncHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_handled_total",
			Help: "Item-change events handled by the syncer, by handler and outcome.",
		},
		[]string{"handler", "outcome"},
	)

	syncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_sync_queue_depth",
			Help: "Item-change events waiting in the sync queue.",
		},
	)
)

func init() {
	prometheus.MustRegister(syncHandled, syncQueueDepth)
}

// ItemChange is one item write, carried as the full before/after document
// states. A nil Before is a creation; a nil After is a deletion.
type ItemChange struct {
	Before *domain.Item
	After  *domain.Item
}

// ItemID returns the id of the changed item, from whichever state is present.
func (c ItemChange) ItemID() string {
	if c.After != nil {
		return c.After.ID
	}
	if c.Before != nil {
		return c.Before.ID
	}
	return ""
}

// Publisher is the narrow interface services depend on to emit changes.
type Publisher interface {
	Publish(change ItemChange)
}

// Syncer owns the change queue and the worker draining it.
type Syncer struct {
	db    *gorm.DB
	index search.Index
	queue chan ItemChange
	done  chan struct{}
	lg    zerolog.Logger

	// CallTimeout bounds each index call so a stuck index cannot wedge the
	// worker. Zero means 5s.
	CallTimeout time.Duration
}

// New constructs a Syncer with the given queue capacity (minimum 1).
func New(db *gorm.DB, index search.Index, buffer int) *Syncer {
	if buffer < 1 {
		buffer = 1
	}
	return &Syncer{
		db:    db,
		index: index,
		queue: make(chan ItemChange, buffer),
		done:  make(chan struct{}),
		lg:    log.With().Str("component", "syncer").Logger(),
	}
}

// Publish enqueues a change. It blocks when the queue is full rather than
// dropping: a lost change would leave the index or a counter stale until an
// unrelated later write happens to repair it.
func (s *Syncer) Publish(change ItemChange) {
	s.queue <- change
	syncQueueDepth.Set(float64(len(s.queue)))
}

// Start launches the worker goroutine. The worker exits when ctx is
// cancelled or Close is called; Close then waits for the drain to finish.
func (s *Syncer) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-s.queue:
				if !ok {
					return
				}
				syncQueueDepth.Set(float64(len(s.queue)))
				s.Process(ctx, change)
			}
		}
	}()
}

// Close stops accepting changes and waits for the worker to drain the queue.
func (s *Syncer) Close() {
	close(s.queue)
	<-s.done
}

// Process runs both handlers for one change. Exported so tests (and callers
// that need read-your-writes, such as the promotion scenario tests) can apply
// a change synchronously; the worker calls it for queued changes.
func (s *Syncer) Process(ctx context.Context, change ItemChange) {
	if err := s.syncIndex(ctx, change); err != nil {
		syncHandled.WithLabelValues("index", "error").Inc()
		s.lg.Error().Err(err).Str("item_id", change.ItemID()).Msg("index sync failed")
	} else {
		syncHandled.WithLabelValues("index", "ok").Inc()
	}

	if err := s.recountVenues(ctx, change); err != nil {
		syncHandled.WithLabelValues("recount", "error").Inc()
		s.lg.Error().Err(err).Str("item_id", change.ItemID()).Msg("venue recount failed")
	} else {
		syncHandled.WithLabelValues("recount", "ok").Inc()
	}
}

// Warm rebuilds the index from the authoritative store: every approved item
// is upserted in pages of 500. Run at boot when the index starts empty.
func (s *Syncer) Warm(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	const page = 500
	for offset := 0; ; offset += page {
		items, err := repo.ListApprovedItems(ctx, s.db, offset, page)
		if err != nil {
			return err
		}
		for i := range items {
			it := &items[i]
			if err := s.syncIndex(ctx, ItemChange{After: it}); err != nil {
				return err
			}
		}
		if len(items) < page {
			return nil
		}
	}
}

// syncIndex reconciles the item's presence in the search index with its
// approval status after the write.
func (s *Syncer) syncIndex(ctx context.Context, change ItemChange) error {
	if s.index == nil {
		return nil
	}
	wasApproved := change.Before != nil && change.Before.Status == domain.StatusApproved
	isApproved := change.After != nil && change.After.Status == domain.StatusApproved

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	switch {
	case isApproved:
		it := change.After
		return s.index.Upsert(callCtx, search.Record{
			ObjectID:  it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Currency:  it.Currency,
			VenueID:   it.VenueID,
			VenueName: it.VenueName,
			City:      it.City,
			District:  it.District,
			Text:      it.SearchableText,
		})
	case wasApproved:
		return s.index.Delete(callCtx, change.ItemID())
	default:
		// pending/rejected/flagged on both sides: nothing to reconcile
		return nil
	}
}

// recountVenues recomputes the approved-item counter for every venue the
// change touches. Full recount, not increment: tolerant of missed and
// duplicated deliveries.
func (s *Syncer) recountVenues(ctx context.Context, change ItemChange) error {
	venues := make(map[string]struct{}, 2)
	if change.Before != nil && change.Before.VenueID != "" {
		venues[change.Before.VenueID] = struct{}{}
	}
	if change.After != nil && change.After.VenueID != "" {
		venues[change.After.VenueID] = struct{}{}
	}

	var firstErr error
	for venueID := range venues {
		n, err := repo.CountApprovedItems(ctx, s.db, venueID)
		if err == nil {
			err = repo.SetVenueItemCount(ctx, s.db, venueID, n)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Syncer) callTimeout() time.Duration {
	if s.CallTimeout > 0 {
		return s.CallTimeout
	}
	return 5 * time.Second
}
