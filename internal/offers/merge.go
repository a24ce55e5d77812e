package offers

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"tilbudsavis/internal/domain/models"
)

// Dedup keeps the first occurrence of every offer; a later record is a
// duplicate when its id or its promotion key was already seen.
func Dedup(in []models.Offer) []models.Offer {
	ids := make(map[string]struct{}, len(in))
	keys := make(map[string]struct{}, len(in))
	out := make([]models.Offer, 0, len(in))

	for _, o := range in {
		_, idSeen := ids[o.ID]
		_, keySeen := keys[o.PromotionKey()]
		if idSeen || keySeen {
			continue
		}
		ids[o.ID] = struct{}{}
		keys[o.PromotionKey()] = struct{}{}
		out = append(out, o)
	}
	return out
}

// Sort orders by ascending cost per unit, then dealer, name and id.
func Sort(offers []models.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if a.CostPerUnit != b.CostPerUnit {
			return a.CostPerUnit < b.CostPerUnit
		}
		if a.Dealer != b.Dealer {
			return a.Dealer < b.Dealer
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Fingerprint identifies an ordered favorites set.
func Fingerprint(dealers []models.Dealer) string {
	ids := make([]string, 0, len(dealers))
	for _, d := range dealers {
		ids = append(ids, d.ID)
	}
	sum := sha256.Sum256([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(sum[:])
}

// Filter keeps offers whose dealer display name matches one of names
// (case-insensitive). No names keeps everything.
func Filter(offers []models.Offer, names ...string) []models.Offer {
	if len(names) == 0 {
		return offers
	}
	out := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		for _, n := range names {
			if strings.EqualFold(o.Dealer, strings.TrimSpace(n)) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}
