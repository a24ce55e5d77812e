package bootstrap

import (
	"log/slog"

	"tilbudsavis/internal/client"
	"tilbudsavis/internal/client/transport"
	"tilbudsavis/internal/config"
	"tilbudsavis/internal/metrics"
)

func BuildTransport(profile *config.Config, log *slog.Logger, monitor *metrics.Monitor) (transport.Transport, error) {
	log.Info("profile",
		"env", profile.Env,
		"base_url", profile.Tjek.BaseURL,
		"timeout", profile.Timeout(),
		"concurrency", profile.HTTP.Concurrency,
	)

	httpClient := client.NewHTTPClient(profile.Timeout())

	opts := client.Options{
		HTTPClient: httpClient,
		Workers:    profile.HTTP.Concurrency,
		Timeout:    profile.Timeout(),
		Logger:     log,
	}
	if monitor != nil {
		opts.Requests = monitor.HTTPRequests
	}
	return client.Build(opts)
}
