package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tilbudsavis/internal/domain/models"
)

const (
	AppDir    = "better_tilbudsavis"
	CacheFile = "offer_cache.json"
)

var (
	ErrCacheMiss  = errors.New("offer cache not found")
	ErrNoCacheDir = errors.New("could not find cache dir")
)

// OfferCache persists one complete retrieval result. Store overwrites the
// previous result wholesale.
type OfferCache interface {
	Load(ctx context.Context) ([]models.Offer, error)
	Store(ctx context.Context, offers []models.Offer) error
}

// CachePath returns <dir>/better_tilbudsavis/offer_cache.json, where dir
// defaults to the OS user cache directory.
func CachePath(dir string) (string, error) {
	if dir == "" {
		d, err := userCacheDir()
		if err != nil || d == "" {
			return "", fmt.Errorf("%w: %v", ErrNoCacheDir, err)
		}
		dir = d
	}
	return filepath.Join(dir, AppDir, CacheFile), nil
}

var userCacheDir = os.UserCacheDir

// Unavailable is used when no cache location can be resolved: every load is
// a miss and every store fails with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) Load(context.Context) ([]models.Offer, error) {
	return nil, fmt.Errorf("%w: %v", ErrCacheMiss, u.Err)
}

func (u Unavailable) Store(context.Context, []models.Offer) error {
	return u.Err
}
