package dealers

import (
	"log/slog"
	"net/http"

	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/http-server/respond"
)

type Lister interface {
	All() []models.Dealer
}

type FavoritesGetter interface {
	Favorites() []models.Dealer
}

type Options struct {
	Log       *slog.Logger
	Lister    Lister
	Favorites FavoritesGetter
}

type Dealer struct {
	models.Dealer
	Favorite bool `json:"favorite"`
}

func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.WriteError(w, 405, "method_not_allowed", "GET only")
			return
		}
		if opts.Lister == nil {
			log.Error("dealers handler misconfigured: Lister is nil")
			respond.WriteInternalError(w)
			return
		}

		fav := map[string]bool{}
		if opts.Favorites != nil {
			for _, d := range opts.Favorites.Favorites() {
				fav[d.Key] = true
			}
		}

		all := opts.Lister.All()
		out := make([]Dealer, 0, len(all))
		for _, d := range all {
			out = append(out, Dealer{Dealer: d, Favorite: fav[d.Key]})
		}

		respond.WriteJSON(w, 200, out)
	}
}
