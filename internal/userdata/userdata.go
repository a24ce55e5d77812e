package userdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tilbudsavis/internal/domain/models"
)

const (
	appDir   = "better_tilbudsavis"
	fileName = "userdata.json"
)

// nowFunc is overridden in tests.
var nowFunc = time.Now

type file struct {
	Favorites            []string  `json:"favorites"`
	NextRefresh          time.Time `json:"next_refresh"`
	FavoritesFingerprint string    `json:"favorites_fingerprint,omitempty"`
}

// UserData holds the favorite dealers and the offer cache refresh schedule.
type UserData struct {
	mu       sync.Mutex
	path     string
	refresh  time.Duration
	registry *models.Registry
	log      *slog.Logger

	favorites   []models.Dealer
	nextRefresh time.Time
	fingerprint string
}

type Options struct {
	Path             string        // empty = <user config dir>/better_tilbudsavis/userdata.json
	RefreshInterval  time.Duration // 24h = once per calendar day
	Registry         *models.Registry
	DefaultFavorites []string
	Logger           *slog.Logger
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads the user data file. A missing file yields defaults and is not an
// error; favorites unknown to the registry are skipped.
func Load(opts Options) (*UserData, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = models.DefaultRegistry()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 24 * time.Hour
	}
	if opts.Path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		opts.Path = p
	}

	u := &UserData{
		path:     opts.Path,
		refresh:  opts.RefreshInterval,
		registry: opts.Registry,
		log:      opts.Logger,
	}

	var f file
	b, err := os.ReadFile(opts.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.Favorites = opts.DefaultFavorites
	case err != nil:
		return nil, fmt.Errorf("read user data: %w", err)
	default:
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("user data has invalid JSON: %w", err)
		}
	}

	u.favorites = u.resolve(f.Favorites)
	u.nextRefresh = f.NextRefresh
	u.fingerprint = f.FavoritesFingerprint
	return u, nil
}

func (u *UserData) resolve(keys []string) []models.Dealer {
	out := make([]models.Dealer, 0, len(keys))
	seen := map[string]struct{}{}
	for _, k := range keys {
		d, ok := u.registry.Lookup(k)
		if !ok {
			u.log.Warn("unknown favorite dealer (skip)", "dealer", k)
			continue
		}
		if _, dup := seen[d.Key]; dup {
			continue
		}
		seen[d.Key] = struct{}{}
		out = append(out, d)
	}
	return out
}

func (u *UserData) Favorites() []models.Dealer {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]models.Dealer(nil), u.favorites...)
}

// SetFavorites replaces the favorites and persists them. It reports whether
// the ordered set changed.
func (u *UserData) SetFavorites(keys []string) (bool, error) {
	dealers, err := u.registry.Resolve(keys)
	if err != nil {
		return false, err
	}

	u.mu.Lock()
	changed := !sameDealers(u.favorites, dealers)
	u.favorites = dealers
	u.mu.Unlock()

	if !changed {
		return false, nil
	}
	return true, u.Save()
}

func (u *UserData) ShouldUpdateCache() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return !nowFunc().Before(u.nextRefresh)
}

func (u *UserData) NextRefresh() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.nextRefresh
}

func (u *UserData) CachedFingerprint() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.fingerprint
}

// CacheUpdated schedules the next refresh and records which favorites the
// cache was built from. Persist failures are logged.
func (u *UserData) CacheUpdated(fingerprint string) {
	u.mu.Lock()
	now := nowFunc()
	if u.refresh == 24*time.Hour {
		y, m, d := now.Date()
		u.nextRefresh = time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	} else {
		u.nextRefresh = now.Add(u.refresh)
	}
	u.fingerprint = fingerprint
	u.mu.Unlock()

	if err := u.Save(); err != nil {
		u.log.Error("save user data failed", "path", u.path, "err", err)
	}
}

func (u *UserData) Save() error {
	u.mu.Lock()
	f := file{
		Favorites:            make([]string, 0, len(u.favorites)),
		NextRefresh:          u.nextRefresh,
		FavoritesFingerprint: u.fingerprint,
	}
	for _, d := range u.favorites {
		f.Favorites = append(f.Favorites, d.Key)
	}
	u.mu.Unlock()

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(u.path), 0o755); err != nil {
		return err
	}
	tmp := u.path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, u.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func sameDealers(a, b []models.Dealer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
