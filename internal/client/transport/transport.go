package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient  *http.Client
	Concurrency int           // max in-flight requests, 0 = unlimited
	Timeout     time.Duration // per-request deadline, 0 = none beyond the client's
	Requests    *prometheus.CounterVec
	Logger      *slog.Logger
}

func (o Options) validate() error {
	if o.HTTPClient == nil {
		return fmt.Errorf("HTTPClient is nil")
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("Concurrency must be >= 0")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("Timeout must be >= 0")
	}
	return nil
}

// Build stacks the layers outermost first: concurrency limit, metrics,
// per-request deadline, plain HTTP.
func Build(opts Options) (Transport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var t Transport = &HTTPTransport{Client: opts.HTTPClient}

	if opts.Timeout > 0 {
		t = &DeadlineTransport{Base: t, Timeout: opts.Timeout}
	}

	if opts.Requests != nil {
		t = &MetricsTransport{Base: t, Requests: opts.Requests, Log: opts.Logger}
	}

	if opts.Concurrency > 0 {
		t = &ConcurrencyTransport{
			Base: t,
			sem:  newSemaphore(opts.Concurrency),
		}
	}

	return t, nil
}

// HTTP transport

type HTTPTransport struct {
	Client *http.Client
}

func (h *HTTPTransport) Do(req *http.Request) (*http.Response, error) {
	return h.Client.Do(req)
}

// deadline transport

type DeadlineTransport struct {
	Base    Transport
	Timeout time.Duration
}

func (t *DeadlineTransport) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.Timeout)
	resp, err := t.Base.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the request context once the caller closes the body.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// metrics transport

type MetricsTransport struct {
	Base     Transport
	Requests *prometheus.CounterVec // labels: host, code
	Log      *slog.Logger
}

func (t *MetricsTransport) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.Do(req)

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	t.Requests.WithLabelValues(req.URL.Host, code).Inc()

	t.Log.Debug("upstream request",
		"method", req.Method,
		"url", req.URL.String(),
		"code", code,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}

// semaphore transport

type semaphore struct {
	ch chan struct{}
}

func newSemaphore(n int) *semaphore {
	if n <= 0 {
		n = 1
	}
	return &semaphore{ch: make(chan struct{}, n)}
}

func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.ch
}

type ConcurrencyTransport struct {
	Base Transport
	sem  *semaphore
}

func (t *ConcurrencyTransport) Do(req *http.Request) (*http.Response, error) {
	if err := t.sem.acquire(req.Context()); err != nil {
		return nil, err
	}
	defer t.sem.release()

	return t.Base.Do(req)
}
