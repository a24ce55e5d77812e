package offers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/http-server/query"
	"tilbudsavis/internal/http-server/respond"
	merge "tilbudsavis/internal/offers"
)

// Source returns the offers of the current favorites. force bypasses the
// cache.
type Source interface {
	Offers(ctx context.Context, force bool) []models.Offer
}

type DealerLookup interface {
	Lookup(key string) (models.Dealer, bool)
}

type Options struct {
	Log     *slog.Logger
	Source  Source
	Dealers DealerLookup // optional, lets ?dealer= take registry keys
	Timeout time.Duration
}

type Result struct {
	FetchedAt string         `json:"fetched_at"`
	Count     int            `json:"count"`
	Offers    []models.Offer `json:"offers"`
}

func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.WriteError(w, 405, "method_not_allowed", "GET only")
			return
		}
		if opts.Source == nil {
			log.Error("offers handler misconfigured: Source is nil")
			respond.WriteInternalError(w)
			return
		}

		limit, _, err := query.Int(r, "limit")
		if err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		}
		if limit < 0 {
			respond.WriteError(w, 400, "bad_request", "limit must be >= 0")
			return
		}

		force, _, err := query.Bool(r, "refresh")
		if err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		names := query.Strings(r, "dealer")
		if opts.Dealers != nil {
			for i, n := range names {
				if d, ok := opts.Dealers.Lookup(n); ok {
					names[i] = d.Name
				}
			}
		}

		list := merge.Filter(opts.Source.Offers(ctx, force), names...)
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		if list == nil {
			list = []models.Offer{}
		}

		respond.WriteJSON(w, 200, Result{
			FetchedAt: time.Now().UTC().Format(time.RFC3339),
			Count:     len(list),
			Offers:    list,
		})
	}
}
