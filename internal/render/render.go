package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"tilbudsavis/internal/domain/models"
)

const (
	FormatTable = "table"
	FormatLines = "lines"
	FormatJSON  = "json"
)

func Write(w io.Writer, offers []models.Offer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		return Table(w, offers)
	case FormatLines:
		return Lines(w, offers)
	case FormatJSON:
		return JSON(w, offers)
	default:
		return fmt.Errorf("unknown format %q (expected table|lines|json)", format)
	}
}

// Table prints one aligned row per offer.
func Table(w io.Writer, offers []models.Offer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tDEALER\tNAME\tPRICE\tCOST/UNIT")
	for _, o := range offers {
		fmt.Fprintf(tw, "%s - %s\t%s\t%s\t%s kr.\t%s kr/%s\n",
			o.RunFrom.Short(), o.RunTill.Short(),
			o.Dealer,
			o.Name,
			Money(o.Price),
			Money(o.CostPerUnit), o.Unit,
		)
	}
	return tw.Flush()
}

func Lines(w io.Writer, offers []models.Offer) error {
	for _, o := range offers {
		if _, err := fmt.Fprintln(w, o.String()); err != nil {
			return err
		}
	}
	return nil
}

func JSON(w io.Writer, offers []models.Offer) error {
	if offers == nil {
		offers = []models.Offer{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(offers)
}

// Money rounds half away from zero to øre.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
