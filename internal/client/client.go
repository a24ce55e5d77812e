package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tilbudsavis/internal/client/httpc"
	"tilbudsavis/internal/client/transport"
)

type Transport = transport.Transport

type Options struct {
	HTTPClient *http.Client
	Workers    int
	Timeout    time.Duration
	Requests   *prometheus.CounterVec

	Logger *slog.Logger
}

func Build(opts Options) (Transport, error) {
	return transport.Build(transport.Options{
		HTTPClient:  opts.HTTPClient,
		Concurrency: opts.Workers,
		Timeout:     opts.Timeout,
		Requests:    opts.Requests,
		Logger:      opts.Logger,
	})
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return httpc.New(timeout)
}
