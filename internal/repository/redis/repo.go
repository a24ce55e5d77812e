package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/repository"
)

const DefaultKey = "better_tilbudsavis:offer_cache"

// Repo keeps the offer cache as one JSON array under a single key.
type Repo struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration // 0 = no expiry
	Log    *slog.Logger
}

var _ repository.OfferCache = (*Repo)(nil)

type Options struct {
	Addr string
	DB   int
	Key  string
	TTL  time.Duration
}

func New(opts Options, log *slog.Logger) *Repo {
	if log == nil {
		log = slog.Default()
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	return &Repo{
		Client: redis.NewClient(&redis.Options{
			Addr: opts.Addr,
			DB:   opts.DB,
		}),
		Key: opts.Key,
		TTL: opts.TTL,
		Log: log,
	}
}

func (r *Repo) Load(ctx context.Context) ([]models.Offer, error) {
	b, err := r.Client.Get(ctx, r.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", repository.ErrCacheMiss, r.Key)
		}
		return nil, fmt.Errorf("read offer cache: %w", err)
	}

	var offers []models.Offer
	if err := json.Unmarshal(b, &offers); err != nil {
		return nil, fmt.Errorf("offer cache has invalid JSON: %w", err)
	}
	if offers == nil {
		return nil, fmt.Errorf("offer cache has invalid JSON: not an array")
	}
	for i, o := range offers {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("offer cache record %d: %w", i, err)
		}
	}

	r.Log.Debug("offer cache loaded", "key", r.Key, "count", len(offers))
	return offers, nil
}

func (r *Repo) Store(ctx context.Context, offers []models.Offer) error {
	if offers == nil {
		offers = []models.Offer{}
	}
	b, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("failed to serialize offers to JSON: %w", err)
	}
	if err := r.Client.Set(ctx, r.Key, b, r.TTL).Err(); err != nil {
		return fmt.Errorf("could not write offer cache: %w", err)
	}

	r.Log.Info("offer cache saved", "key", r.Key, "count", len(offers))
	return nil
}

func (r *Repo) Close() error {
	return r.Client.Close()
}
