package models

import (
	"fmt"
	"sort"
	"strings"
)

// Dealer is a retail chain as known to the catalog API.
type Dealer struct {
	Key  string `json:"key" yaml:"key"`
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

var (
	Rema1000 = Dealer{Key: "rema1000", ID: "11deC", Name: "Rema 1000"}
	Netto    = Dealer{Key: "netto", ID: "9ba51", Name: "Netto"}
)

type Registry struct {
	byKey map[string]Dealer
}

func NewRegistry(dealers ...Dealer) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Dealer, len(dealers))}
	for _, d := range dealers {
		if err := r.Add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry holds the built-in chains.
func DefaultRegistry() *Registry {
	return &Registry{byKey: map[string]Dealer{
		Rema1000.Key: Rema1000,
		Netto.Key:    Netto,
	}}
}

// Add inserts or replaces a dealer.
func (r *Registry) Add(d Dealer) error {
	d.Key = normalizeKey(d.Key)
	d.ID = strings.TrimSpace(d.ID)
	d.Name = strings.TrimSpace(d.Name)
	if d.Key == "" || d.ID == "" {
		return fmt.Errorf("dealer needs key and id (got key=%q id=%q)", d.Key, d.ID)
	}
	if d.Name == "" {
		d.Name = d.Key
	}
	r.byKey[d.Key] = d
	return nil
}

func (r *Registry) Lookup(key string) (Dealer, bool) {
	d, ok := r.byKey[normalizeKey(key)]
	return d, ok
}

// Resolve maps keys to dealers in order, dropping duplicates.
func (r *Registry) Resolve(keys []string) ([]Dealer, error) {
	out := make([]Dealer, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		d, ok := r.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("unknown dealer %q (known: %s)", k, strings.Join(r.Keys(), ", "))
		}
		if _, dup := seen[d.Key]; dup {
			continue
		}
		seen[d.Key] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}

func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) All() []Dealer {
	out := make([]Dealer, 0, len(r.byKey))
	for _, k := range r.Keys() {
		out = append(out, r.byKey[k])
	}
	return out
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
