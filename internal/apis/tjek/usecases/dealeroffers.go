package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tilbudsavis/internal/apis/tjek"
	"tilbudsavis/internal/apis/tjek/mapper"
	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/metrics"
)

type DealerOffersService struct {
	tjek    tjek.TjekService
	log     *slog.Logger
	monitor *metrics.Monitor
	workers int
}

func NewDealerOffersService(
	tjekSvc tjek.TjekService,
	logger *slog.Logger,
	monitor *metrics.Monitor,
	workers int,
) *DealerOffersService {
	if logger == nil {
		logger = slog.Default()
	}
	if monitor == nil {
		monitor = metrics.New()
	}
	if workers <= 0 {
		workers = 4
	}

	return &DealerOffersService{
		tjek:    tjekSvc,
		log:     logger,
		monitor: monitor,
		workers: workers,
	}
}

// GetByDealer lists the dealer's current catalogs and normalizes the hotspots
// of each one. A failed catalog listing is returned as an error; a failed
// hotspot fetch only drops that catalog.
func (s *DealerOffersService) GetByDealer(ctx context.Context, dealer models.Dealer) ([]models.Offer, error) {
	catalogs, err := s.tjek.ListCatalogs(ctx, dealer.ID)
	if err != nil {
		s.monitor.CatalogErrors.WithLabelValues(dealer.Key, "catalogs").Inc()
		return nil, fmt.Errorf("list catalogs dealer=%s: %w", dealer.Key, err)
	}

	// one slot per catalog keeps the result order independent of scheduling
	perCatalog := make([][]models.Offer, len(catalogs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, c := range catalogs {
		g.Go(func() error {
			raw, err := s.tjek.ListHotspots(gctx, c.ID)
			if err != nil {
				s.monitor.CatalogErrors.WithLabelValues(dealer.Key, "hotspots").Inc()
				s.log.Warn("list hotspots failed (skip catalog)",
					"dealer", dealer.Key,
					"catalog_id", c.ID,
					"err", err,
				)
				return nil
			}

			out := make([]models.Offer, 0, len(raw))
			dropped := 0
			for _, h := range raw {
				o, ok := mapper.FromHotspot(h, dealer.Name)
				if !ok {
					dropped++
					continue
				}
				out = append(out, o)
			}
			if dropped > 0 {
				s.monitor.OffersDropped.WithLabelValues(dealer.Key).Add(float64(dropped))
			}

			s.log.Debug("catalog normalized",
				"dealer", dealer.Key,
				"catalog_id", c.ID,
				"run_from", c.RunFrom.String(),
				"run_till", c.RunTill.String(),
				"hotspots", len(raw),
				"offers", len(out),
				"dropped", dropped,
			)
			perCatalog[i] = out
			return nil
		})
	}
	// goroutines never return errors
	_ = g.Wait()

	total := 0
	for _, p := range perCatalog {
		total += len(p)
	}
	offers := make([]models.Offer, 0, total)
	for _, p := range perCatalog {
		offers = append(offers, p...)
	}

	s.log.Info("dealer offers fetched",
		"dealer", dealer.Key,
		"catalogs", len(catalogs),
		"count", len(offers),
	)
	return offers, nil
}
