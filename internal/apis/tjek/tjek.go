package tjek

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"tilbudsavis/internal/apis/tjek/endpoints"
	"tilbudsavis/internal/apis/tjek/responses"
	"tilbudsavis/internal/client"
)

const DefaultBaseURL = "https://squid-api.tjek.com/v2"

type Catalog = responses.Catalog

type TjekService interface {
	ListCatalogs(ctx context.Context, dealerID string) ([]Catalog, error)
	ListHotspots(ctx context.Context, catalogID string) ([]json.RawMessage, error)
}

type service struct {
	api *endpoints.Client
	log *slog.Logger
}

func New(transport client.Transport, baseURL string, logger *slog.Logger) TjekService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &service{log: logger}
	s.api = endpoints.New(transport, baseURL, s.applyDefaultHeaders)
	return s
}

func (s *service) applyDefaultHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "better-tilbudsavis/1.0")
}

func (s *service) ListCatalogs(ctx context.Context, dealerID string) ([]Catalog, error) {
	out, err := s.api.ListCatalogs(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	s.log.Debug("catalogs listed", "dealer_id", dealerID, "count", len(out))
	return out, nil
}

func (s *service) ListHotspots(ctx context.Context, catalogID string) ([]json.RawMessage, error) {
	out, err := s.api.ListHotspots(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	s.log.Debug("hotspots listed", "catalog_id", catalogID, "count", len(out))
	return out, nil
}
