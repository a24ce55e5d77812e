package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"tilbudsavis/internal/apis/tjek/responses"
)

func (c *Client) ListCatalogs(ctx context.Context, dealerID string) ([]responses.Catalog, error) {
	if dealerID == "" {
		return nil, fmt.Errorf("ListCatalogs: empty dealer id")
	}

	q := url.Values{}
	q.Set("dealer_ids", dealerID)

	var out []responses.Catalog
	if err := c.getJSON(ctx, "/catalogs", q, 2*1024*1024, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHotspots returns the raw hotspot values of one catalog; interpretation
// is left to the mapper.
func (c *Client) ListHotspots(ctx context.Context, catalogID string) ([]json.RawMessage, error) {
	if catalogID == "" {
		return nil, fmt.Errorf("ListHotspots: empty catalog id")
	}

	var out []json.RawMessage
	if err := c.getJSON(ctx, "/catalogs/"+url.PathEscape(catalogID)+"/hotspots", nil, 16*1024*1024, &out); err != nil {
		return nil, err
	}
	return out, nil
}
