package bootstrap

import (
	"log/slog"
	"time"

	"tilbudsavis/internal/config"
	"tilbudsavis/internal/repository"
	jsonfile "tilbudsavis/internal/repository/json"
	rediscache "tilbudsavis/internal/repository/redis"
)

// BuildCache returns the configured offer cache and a close func. When the
// cache directory cannot be resolved the app still runs, uncached.
func BuildCache(profile *config.Config, log *slog.Logger) (repository.OfferCache, func() error) {
	noop := func() error { return nil }

	switch profile.Cache.Backend {
	case "redis":
		r := rediscache.New(rediscache.Options{
			Addr: profile.Cache.Redis.Addr,
			DB:   profile.Cache.Redis.DB,
			Key:  profile.Cache.Redis.Key,
			TTL:  time.Duration(profile.Cache.Redis.TTLHours) * time.Hour,
		}, log)
		log.Info("offer cache", "backend", "redis", "addr", profile.Cache.Redis.Addr, "key", r.Key)
		return r, r.Close
	default:
		path, err := repository.CachePath(profile.Cache.Dir)
		if err != nil {
			log.Warn("offer cache disabled", "err", err)
			return repository.Unavailable{Err: err}, noop
		}
		log.Info("offer cache", "backend", "file", "path", path)
		return jsonfile.New(path, log), noop
	}
}
