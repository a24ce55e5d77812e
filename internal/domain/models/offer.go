package models

import (
	"errors"
	"fmt"
	"math"
)

type Offer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Dealer      string  `json:"dealer"`
	Price       float64 `json:"price"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Unit        string  `json:"unit"`
	MinSize     float64 `json:"min_size"`
	MaxSize     float64 `json:"max_size"`
	MinAmount   int     `json:"min_amount"`
	MaxAmount   int     `json:"max_amount"`
	RunFrom     Date    `json:"run_from"`
	RunTill     Date    `json:"run_till"`
}

// CostPerUnit is price per kg or l for weight and volume units, otherwise
// price per piece. A zero or invalid maxSize falls back to per piece.
func CostPerUnit(price, maxSize float64, unit string) float64 {
	switch unit {
	case "kg", "l":
		if maxSize > 0 && !math.IsInf(maxSize, 0) && !math.IsNaN(maxSize) {
			return price / maxSize
		}
	}
	return price
}

func (o Offer) Validate() error {
	var errs []error
	if o.ID == "" {
		errs = append(errs, errors.New("empty id"))
	}
	if o.Unit == "" {
		errs = append(errs, errors.New("empty unit"))
	}
	if !finite(o.Price) || o.Price < 0 {
		errs = append(errs, fmt.Errorf("bad price %v", o.Price))
	}
	if !finite(o.MinSize) || !finite(o.MaxSize) || o.MinSize < 0 || o.MinSize > o.MaxSize {
		errs = append(errs, fmt.Errorf("bad size range %v..%v", o.MinSize, o.MaxSize))
	}
	if o.MinAmount < 1 || o.MinAmount > o.MaxAmount {
		errs = append(errs, fmt.Errorf("bad amount range %d..%d", o.MinAmount, o.MaxAmount))
	}
	if o.RunFrom.IsZero() || o.RunTill.IsZero() || o.RunFrom.After(o.RunTill) {
		errs = append(errs, fmt.Errorf("bad run %s..%s", o.RunFrom, o.RunTill))
	}
	if !finite(o.CostPerUnit) {
		errs = append(errs, fmt.Errorf("bad cost per unit %v", o.CostPerUnit))
	}
	return errors.Join(errs...)
}

// PromotionKey identifies the same promotion re-issued under a different id.
func (o Offer) PromotionKey() string {
	return o.Dealer + "\x00" + o.Name + "\x00" + o.RunFrom.String() + "\x00" + o.RunTill.String()
}

// SameAs reports whether two records describe one offer: equal ids, or
// equal dealer, name and run window.
func (o Offer) SameAs(other Offer) bool {
	return o.ID == other.ID || o.PromotionKey() == other.PromotionKey()
}

func (o Offer) String() string {
	return fmt.Sprintf("%s - %s: %s - %s: %.2f kr. - %.2f kr/%s",
		o.RunFrom.Short(), o.RunTill.Short(), o.Dealer, o.Name, o.Price, o.CostPerUnit, o.Unit)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
