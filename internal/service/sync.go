package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"world-rates-service/internal/domain/model"
	"world-rates-service/internal/domain/ports"
	"world-rates-service/internal/metrics"
	"world-rates-service/pkg/logger"
)

const (
	DefaultFetchTimeout         = 10 * time.Second
	DefaultMaxConcurrentFetches = 8

	subscriberBuffer = 8
)

type SyncOptions struct {
	FetchTimeout         time.Duration
	MaxConcurrentFetches int
}

// SyncService owns the in-memory rate cache. It runs at most one fetch
// batch at a time; requests arriving while a batch is in flight are
// dropped. The currency set of the last dropped Evaluate is re-checked
// once that batch finishes.
type SyncService struct {
	fetcher ports.RateFetcher
	store   ports.RateStore
	policy  FreshnessPolicy
	clock   ports.Clock
	log     *logger.Logger
	metrics *metrics.Metrics

	fetchTimeout  time.Duration
	maxConcurrent int

	// mu guards everything below. cache is replaced, never mutated in place.
	mu          sync.RWMutex
	cache       model.RateCache
	synced      bool
	syncing     bool
	pending     []model.Currency
	subscribers map[int]chan model.SyncEvent
	nextSubID   int
}

// NewSyncService hydrates the cache from store.
func NewSyncService(
	fetcher ports.RateFetcher,
	store ports.RateStore,
	policy FreshnessPolicy,
	clock ports.Clock,
	opts SyncOptions,
	log *logger.Logger,
	m *metrics.Metrics,
) *SyncService {
	if clock == nil {
		clock = ports.SystemClock
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}

	cache := store.Load(context.Background())
	if cache == nil {
		cache = model.RateCache{}
	}
	m.CachedCurrencies.Set(float64(len(cache)))
	log.Info("Rate cache hydrated", "currencies", len(cache))

	return &SyncService{
		fetcher:       fetcher,
		store:         store,
		policy:        policy,
		clock:         clock,
		log:           log,
		metrics:       m,
		fetchTimeout:  opts.FetchTimeout,
		maxConcurrent: opts.MaxConcurrentFetches,
		cache:         cache,
		subscribers:   make(map[int]chan model.SyncEvent),
	}
}

// Evaluate fetches whatever the freshness policy says is missing or about
// to expire. When everything is fresh it only marks the set as synced.
func (s *SyncService) Evaluate(ctx context.Context, currencies []model.Currency) {
	codes := model.UniqueCurrencies(currencies)
	if len(codes) == 0 {
		return
	}

	s.mu.Lock()
	if s.syncing {
		s.pending = codes
		s.mu.Unlock()
		s.drop("evaluate")
		return
	}
	now := s.clock.Now()
	if !s.needsRefreshLocked(codes, now) {
		s.synced = true
		s.mu.Unlock()
		return
	}
	snapshot := s.beginLocked()
	s.mu.Unlock()

	s.runBatch(ctx, codes, snapshot, false)
}

// Refresh re-fetches every currency regardless of remaining TTL.
func (s *SyncService) Refresh(ctx context.Context, currencies []model.Currency) {
	codes := model.UniqueCurrencies(currencies)
	if len(codes) == 0 {
		return
	}

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		s.drop("refresh")
		return
	}
	snapshot := s.beginLocked()
	s.mu.Unlock()

	s.runBatch(ctx, codes, snapshot, true)
}

func (s *SyncService) Status() model.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.SyncStatus{Synced: s.synced, Syncing: s.syncing}
}

// Snapshot returns a deep copy of the cache.
func (s *SyncService) Snapshot() model.RateCache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Clone()
}

func (s *SyncService) Convert(from, to model.Currency) float64 {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()
	return Rate(from, to, cache)
}

// Subscribe registers for a SyncEvent after every merge. Slow subscribers
// miss events rather than block the batch. The returned func unsubscribes
// and closes the channel.
func (s *SyncService) Subscribe() (<-chan model.SyncEvent, func()) {
	ch := make(chan model.SyncEvent, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *SyncService) needsRefreshLocked(codes []model.Currency, now time.Time) bool {
	for _, code := range codes {
		if s.policy.NeedsRefresh(s.cache.Lookup(code), false, now) {
			return true
		}
	}
	return false
}

func (s *SyncService) beginLocked() model.RateCache {
	s.syncing = true
	s.metrics.SyncInProgress.Set(1)
	return s.cache
}

func (s *SyncService) drop(kind string) {
	s.metrics.SyncDroppedTotal.Inc()
	s.log.Debug("Sync already in flight, dropping request", "kind", kind)
}

type fetchOutcome struct {
	code    model.Currency
	record  model.CachedRate
	fetched bool
	failed  bool
}

func (s *SyncService) runBatch(ctx context.Context, codes []model.Currency, snapshot model.RateCache, force bool) {
	batchID := uuid.NewString()
	log := s.log.With("batch_id", batchID, "forced", force)
	now := s.clock.Now()
	started := time.Now()

	log.Info("Starting rate sync", "currencies", len(codes))

	outcomes := make([]fetchOutcome, len(codes))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)

	for i, code := range codes {
		outcomes[i].code = code
		existing := snapshot.Lookup(code)
		if !s.policy.NeedsRefresh(existing, force, now) {
			continue
		}

		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			rates, err := s.fetcher.FetchRates(fetchCtx, code, codes)
			if err != nil {
				log.Warn("Failed to fetch rates", "base", code.String(), "error", err)
				outcomes[i].failed = true
				return nil
			}
			if len(rates) == 0 {
				log.Warn("Rate provider returned no rates", "base", code.String())
				outcomes[i].failed = true
				return nil
			}

			outcomes[i].record = model.CachedRate{
				Rates:     rates,
				ExpiresAt: s.policy.NextExpiry(existing, force, now),
			}
			outcomes[i].fetched = true
			return nil
		})
	}
	// Fetch failures land in outcomes; no closure returns an error.
	_ = g.Wait()

	event := model.SyncEvent{
		BatchID: batchID,
		Forced:  force,
		Updated: []model.Currency{},
		Failed:  []model.Currency{},
		At:      s.clock.Now(),
	}

	next := make(model.RateCache, len(snapshot)+len(codes))
	for k, v := range snapshot {
		next[k] = v
	}
	for _, o := range outcomes {
		switch {
		case o.fetched:
			next[o.code] = o.record
			event.Updated = append(event.Updated, o.code)
		case o.failed:
			event.Failed = append(event.Failed, o.code)
		}
	}

	synced := len(event.Failed) == 0
	for _, code := range codes {
		if !s.policy.IsFresh(next.Lookup(code), now) {
			synced = false
			break
		}
	}
	event.Synced = synced

	s.mu.Lock()
	s.cache = next
	s.synced = synced && s.pending == nil
	s.mu.Unlock()
	s.metrics.CachedCurrencies.Set(float64(len(next)))

	if len(event.Updated) > 0 {
		if err := s.store.Save(ctx, next); err != nil {
			log.Error("Failed to persist rate cache", "error", err)
		}
	}

	s.mu.Lock()
	s.syncing = false
	s.metrics.SyncInProgress.Set(0)
	followUp := s.pending
	s.pending = nil
	if followUp != nil {
		// the set changed mid-batch, so this batch cannot vouch for it
		synced = false
		s.synced = false
		event.Synced = false
	}
	s.notifyLocked(event)
	s.mu.Unlock()

	kind := "evaluate"
	if force {
		kind = "refresh"
	}
	s.metrics.SyncBatchesTotal.WithLabelValues(kind, strconv.FormatBool(synced)).Inc()

	log.Info("Rate sync finished",
		"synced", synced,
		"updated", len(event.Updated),
		"failed", len(event.Failed),
		"duration", time.Since(started),
	)

	if followUp != nil {
		log.Info("Re-evaluating currencies requested during the batch", "currencies", len(followUp))
		s.Evaluate(ctx, followUp)
	}
}

// notifyLocked must run under mu so a concurrent unsubscribe cannot close
// a channel mid-send.
func (s *SyncService) notifyLocked(event model.SyncEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.log.Warn("Dropping sync event for slow subscriber", "batch_id", event.BatchID)
		}
	}
}
