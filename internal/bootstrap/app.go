package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"tilbudsavis/internal/apis/tjek"
	"tilbudsavis/internal/apis/tjek/usecases"
	"tilbudsavis/internal/config"
	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/metrics"
	"tilbudsavis/internal/offers"
	"tilbudsavis/internal/userdata"
)

// App is the wiring shared by the cli and the api.
type App struct {
	Config      *config.Config
	Log         *slog.Logger
	Monitor     *metrics.Monitor
	Registry    *models.Registry
	UserData    *userdata.UserData
	Coordinator *offers.Coordinator

	mu         sync.Mutex
	closeCache func() error
}

// LoadConfig reads path, falling back to defaults when the file is missing.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return cfg, err
}

func Build(profile *config.Config, log *slog.Logger) (*App, error) {
	monitor := metrics.New()

	registry, err := profile.Registry()
	if err != nil {
		return nil, err
	}

	tr, err := BuildTransport(profile, log, monitor)
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	ud, err := userdata.Load(userdata.Options{
		Path:             profile.UserData.Path,
		RefreshInterval:  profile.RefreshInterval(),
		Registry:         registry,
		DefaultFavorites: profile.Favorites,
		Logger:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("load user data: %w", err)
	}

	cache, closeCache := BuildCache(profile, log)

	tjekSvc := tjek.New(tr, profile.Tjek.BaseURL, log)
	fetcher := usecases.NewDealerOffersService(tjekSvc, log, monitor, profile.HTTP.Workers)

	return &App{
		Config:      profile,
		Log:         log,
		Monitor:     monitor,
		Registry:    registry,
		UserData:    ud,
		Coordinator: offers.NewCoordinator(fetcher, cache, log, monitor, profile.HTTP.Workers),
		closeCache:  closeCache,
	}, nil
}

// Offers runs one retrieval at a time so concurrent callers never refresh
// in parallel. force treats the favorites as changed.
func (a *App) Offers(ctx context.Context, force bool) []models.Offer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Coordinator.Retrieve(ctx, a.UserData, force)
}

func (a *App) Close() error {
	var errs []error
	if err := a.closeCache(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	return errors.Join(errs...)
}
