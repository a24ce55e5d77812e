package mapper

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"tilbudsavis/internal/domain/models"
)

// FromHotspot extracts one offer from a raw hotspot value. Any missing or
// wrong-typed field, or a record failing validation, yields ok=false.
func FromHotspot(raw []byte, dealerName string) (models.Offer, bool) {
	if !gjson.ValidBytes(raw) {
		return models.Offer{}, false
	}
	offer := gjson.GetBytes(raw, "offer")
	if !offer.IsObject() {
		return models.Offer{}, false
	}

	factor, ok := number(offer, "quantity.unit.si.factor")
	if !ok {
		return models.Offer{}, false
	}
	unit, ok := str(offer, "quantity.unit.si.symbol")
	if !ok {
		return models.Offer{}, false
	}
	id, ok := str(offer, "id")
	if !ok {
		return models.Offer{}, false
	}
	name, ok := str(offer, "heading")
	if !ok {
		return models.Offer{}, false
	}
	price, ok := number(offer, "pricing.price")
	if !ok {
		return models.Offer{}, false
	}
	minAmount, ok := count(offer, "quantity.pieces.from")
	if !ok {
		return models.Offer{}, false
	}
	maxAmount, ok := count(offer, "quantity.pieces.to")
	if !ok {
		return models.Offer{}, false
	}
	minSize, ok := number(offer, "quantity.size.from")
	if !ok {
		return models.Offer{}, false
	}
	maxSize, ok := number(offer, "quantity.size.to")
	if !ok {
		return models.Offer{}, false
	}
	runFrom, ok := date(offer, "run_from")
	if !ok {
		return models.Offer{}, false
	}
	runTill, ok := date(offer, "run_till")
	if !ok {
		return models.Offer{}, false
	}

	o := models.Offer{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Dealer:    dealerName,
		Price:     price,
		Unit:      unit,
		MinSize:   minSize * factor,
		MaxSize:   maxSize * factor,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		RunFrom:   runFrom,
		RunTill:   runTill,
	}
	o.CostPerUnit = models.CostPerUnit(o.Price, o.MaxSize, o.Unit)

	if o.Validate() != nil {
		return models.Offer{}, false
	}
	return o, true
}

func str(r gjson.Result, path string) (string, bool) {
	v := r.Get(path)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

func number(r gjson.Result, path string) (float64, bool) {
	v := r.Get(path)
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Num, true
}

// count accepts only non-negative integral numbers.
func count(r gjson.Result, path string) (int, bool) {
	f, ok := number(r, path)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func date(r gjson.Result, path string) (models.Date, bool) {
	s, ok := str(r, path)
	if !ok {
		return models.Date{}, false
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, false
	}
	return d, true
}
