package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tilbudsavis/internal/http-server/handlers/dealers"
	"tilbudsavis/internal/http-server/handlers/offers"
	"tilbudsavis/internal/http-server/middleware"
)

type Server struct {
	log *slog.Logger
	mux *http.ServeMux
}

func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, mux: http.NewServeMux()}
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = middleware.WithRequestID(h)
	h = middleware.RecoverPanic(s.log, h)
	h = middleware.AccessLog(s.log, h)
	return h
}

type Registry interface {
	dealers.Lister
	offers.DealerLookup
}

type Deps struct {
	Offers    offers.Source
	Registry  Registry
	Favorites dealers.FavoritesGetter
	Metrics   prometheus.Gatherer
	Timeout   time.Duration
}

func (s *Server) RegisterRoutes(dep Deps) {
	s.mux.HandleFunc("/offers", offers.NewGetHandler(offers.Options{
		Log:     s.log,
		Source:  dep.Offers,
		Dealers: dep.Registry,
		Timeout: dep.Timeout,
	}))

	s.mux.HandleFunc("/dealers", dealers.NewGetHandler(dealers.Options{
		Log:       s.log,
		Lister:    dep.Registry,
		Favorites: dep.Favorites,
	}))

	if dep.Metrics != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(dep.Metrics, promhttp.HandlerOpts{}))
	}
}
