package offers

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/metrics"
	"tilbudsavis/internal/repository"
)

type DealerFetcher interface {
	GetByDealer(ctx context.Context, dealer models.Dealer) ([]models.Offer, error)
}

// UserData is the part of the user's persisted state the coordinator needs.
type UserData interface {
	Favorites() []models.Dealer
	ShouldUpdateCache() bool
	CachedFingerprint() string
	CacheUpdated(fingerprint string)
}

type Coordinator struct {
	fetcher DealerFetcher
	cache   repository.OfferCache
	log     *slog.Logger
	monitor *metrics.Monitor
	workers int
}

func NewCoordinator(
	fetcher DealerFetcher,
	cache repository.OfferCache,
	logger *slog.Logger,
	monitor *metrics.Monitor,
	workers int,
) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if monitor == nil {
		monitor = metrics.New()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Coordinator{
		fetcher: fetcher,
		cache:   cache,
		log:     logger,
		monitor: monitor,
		workers: workers,
	}
}

// Retrieve returns the offers of the user's favorite dealers, from the cache
// when it is present, built from the same favorites and not yet due for a
// refresh, otherwise from the remote API. It never fails; the worst case is
// an empty result.
func (c *Coordinator) Retrieve(ctx context.Context, ud UserData, favoritesChanged bool) []models.Offer {
	favorites := ud.Favorites()
	fp := Fingerprint(favorites)

	cached, err := c.cache.Load(ctx)
	var reason string
	switch {
	case err != nil:
		reason = "miss"
		c.log.Debug("offer cache unusable", "err", err)
	case favoritesChanged || fp != ud.CachedFingerprint():
		reason = "changed"
	case ud.ShouldUpdateCache():
		reason = "stale"
	default:
		c.monitor.Cache.WithLabelValues("hit").Inc()
		c.monitor.Offers.Set(float64(len(cached)))
		c.log.Debug("offer cache hit", "count", len(cached))
		return cached
	}
	c.monitor.Cache.WithLabelValues(reason).Inc()
	c.log.Info("refreshing offers", "reason", reason, "dealers", len(favorites))

	offers := c.Refresh(ctx, favorites)
	c.monitor.Offers.Set(float64(len(offers)))

	if len(offers) == 0 {
		// keep whatever was cached before; the next run tries the network again
		c.monitor.Cache.WithLabelValues("write_skipped").Inc()
		c.log.Warn("no offers retrieved, offer cache left untouched")
		return offers
	}

	if err := c.cache.Store(ctx, offers); err != nil {
		c.monitor.Cache.WithLabelValues("write_error").Inc()
		c.log.Error("could not write offer cache", "err", err)
		return offers
	}
	c.monitor.Cache.WithLabelValues("written").Inc()
	ud.CacheUpdated(fp)

	return offers
}

// Refresh fetches every dealer concurrently and returns the merged,
// deduplicated and sorted offers. A failing dealer contributes nothing.
func (c *Coordinator) Refresh(ctx context.Context, dealers []models.Dealer) []models.Offer {
	start := time.Now()
	perDealer := make([][]models.Offer, len(dealers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, d := range dealers {
		g.Go(func() error {
			offers, err := c.fetcher.GetByDealer(gctx, d)
			if err != nil {
				c.log.Debug("dealer fetch failed (skip)", "dealer", d.Key, "err", err)
				return nil
			}
			perDealer[i] = offers
			return nil
		})
	}
	_ = g.Wait()

	var merged []models.Offer
	for _, p := range perDealer {
		merged = append(merged, p...)
	}
	out := Dedup(merged)
	Sort(out)

	c.monitor.RefreshDuration.Observe(time.Since(start).Seconds())
	c.log.Info("offers refreshed",
		"dealers", len(dealers),
		"fetched", len(merged),
		"count", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out
}
