package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/repository"
)

// Repo is the file-backed offer cache.
type Repo struct {
	Path string
	Log  *slog.Logger
}

var _ repository.OfferCache = (*Repo)(nil)

func New(path string, log *slog.Logger) *Repo {
	if log == nil {
		log = slog.Default()
	}
	return &Repo{Path: path, Log: log}
}

func (r *Repo) Load(ctx context.Context) ([]models.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Path == "" {
		return nil, fmt.Errorf("jsonfile repo: empty path")
	}

	b, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repository.ErrCacheMiss, r.Path)
		}
		return nil, fmt.Errorf("read offer cache: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var offers []models.Offer
	if err := dec.Decode(&offers); err != nil {
		return nil, fmt.Errorf("offer cache has invalid JSON: %w", err)
	}
	if offers == nil {
		return nil, fmt.Errorf("offer cache has invalid JSON: not an array")
	}
	for i, o := range offers {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("offer cache record %d: %w", i, err)
		}
	}

	r.Log.Debug("offer cache loaded", "path", r.Path, "count", len(offers))
	return offers, nil
}

func (r *Repo) Store(ctx context.Context, offers []models.Offer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Path == "" {
		return fmt.Errorf("jsonfile repo: empty path")
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	b, err := json.MarshalIndent(offers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize offers to JSON: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(r.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create cache dir: %w", err)
		}
	}

	// rename keeps a concurrent reader from seeing a half-written file
	tmp := r.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("could not write offer cache: %w", err)
	}
	if err := os.Rename(tmp, r.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("could not write offer cache: %w", err)
	}

	r.Log.Info("offer cache saved", "path", r.Path, "count", len(offers))
	return nil
}
