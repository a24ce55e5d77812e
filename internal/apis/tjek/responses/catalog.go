package responses

import "tilbudsavis/internal/domain/models"

type Catalog struct {
	ID         string      `json:"id"`
	DealerID   string      `json:"dealer_id"`
	RunFrom    models.Date `json:"run_from"`
	RunTill    models.Date `json:"run_till"`
	OfferCount int         `json:"offer_count"`
}
