package offers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilbudsavis/internal/apis/tjek"
	"tilbudsavis/internal/apis/tjek/tjektest"
	"tilbudsavis/internal/apis/tjek/usecases"
	"tilbudsavis/internal/domain/models"
	"tilbudsavis/internal/metrics"
	jsonfile "tilbudsavis/internal/repository/json"
)

type fakeUserData struct {
	favorites   []models.Dealer
	stale       bool
	fingerprint string
	updated     int
}

func (u *fakeUserData) Favorites() []models.Dealer { return u.favorites }
func (u *fakeUserData) ShouldUpdateCache() bool    { return u.stale }
func (u *fakeUserData) CachedFingerprint() string  { return u.fingerprint }
func (u *fakeUserData) CacheUpdated(fp string) {
	u.updated++
	u.fingerprint = fp
	u.stale = false
}

type fixture struct {
	srv     *tjektest.Server
	cache   *jsonfile.Repo
	monitor *metrics.Monitor
	coord   *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := tjektest.NewServer()
	t.Cleanup(srv.Close)

	m := metrics.New()
	fetcher := usecases.NewDealerOffersService(tjek.New(srv.Client(), srv.URL, nil), nil, m, 2)
	cache := jsonfile.New(filepath.Join(t.TempDir(), "better_tilbudsavis", "offer_cache.json"), nil)

	return &fixture{
		srv:     srv,
		cache:   cache,
		monitor: m,
		coord:   NewCoordinator(fetcher, cache, nil, m, 2),
	}
}

func (f *fixture) addRemaCatalog() {
	f.srv.AddCatalog(models.Rema1000.ID, "cat1",
		tjektest.Hotspot("k1", "Hakket svinekød", 20, "kg", 0.001, 500, tjektest.RunFrom, tjektest.RunTill),
		tjektest.Hotspot("k2", "Kaffe", 55, "kg", 1, 1, tjektest.RunFrom, tjektest.RunTill),
		tjektest.Hotspot("p1", "Agurk", 7, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill),
	)
}

func assertInvariants(t *testing.T, offers []models.Offer) {
	t.Helper()
	ids := map[string]bool{}
	keys := map[string]bool{}
	for _, o := range offers {
		assert.NoError(t, o.Validate())
		if (o.Unit == "kg" || o.Unit == "l") && o.MaxSize > 0 {
			assert.InDelta(t, o.Price/o.MaxSize, o.CostPerUnit, 1e-9)
		} else {
			assert.Equal(t, o.Price, o.CostPerUnit)
		}
		assert.False(t, ids[o.ID], "duplicate id %s", o.ID)
		assert.False(t, keys[o.PromotionKey()], "duplicate promotion %s", o.Name)
		ids[o.ID] = true
		keys[o.PromotionKey()] = true
	}
}

func TestHappyPathOneDealer(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}

	got := f.coord.Retrieve(context.Background(), ud, false)
	require.Len(t, got, 3)
	assertInvariants(t, got)

	// ascending cost per unit
	assert.Equal(t, "p1", got[0].ID)
	assert.InDelta(t, 7, got[0].CostPerUnit, 1e-9)
	assert.Equal(t, "k1", got[1].ID)
	assert.InDelta(t, 40, got[1].CostPerUnit, 1e-9)
	assert.Equal(t, "k2", got[2].ID)
	assert.InDelta(t, 55, got[2].CostPerUnit, 1e-9)

	assert.Equal(t, 1, ud.updated)
	cached, err := f.cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, cached)
}

func TestPartialMalformedHotspot(t *testing.T) {
	f := newFixture(t)
	f.srv.AddCatalog(models.Rema1000.ID, "cat1",
		tjektest.Hotspot("k1", "Hakket svinekød", 20, "kg", 0.001, 500, tjektest.RunFrom, tjektest.RunTill),
		`{"offer":{"id":"k2","heading":"Kaffe","pricing":{"currency":"DKK"},"quantity":{"unit":{"si":{"symbol":"kg","factor":1}},"size":{"from":1,"to":1},"pieces":{"from":1,"to":1}},"run_from":"2024-03-02T00:00:00+0100","run_till":"2024-03-08T00:00:00+0100"}}`,
		tjektest.Hotspot("p1", "Agurk", 7, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill),
	)
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}

	got := f.coord.Retrieve(context.Background(), ud, false)
	assert.Len(t, got, 2)
	assertInvariants(t, got)
}

func TestCacheHitWithinTTL(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}
	ctx := context.Background()

	first := f.coord.Retrieve(ctx, ud, false)
	before := f.srv.Requests()
	require.NotZero(t, before)

	second := f.coord.Retrieve(ctx, ud, false)
	assert.Equal(t, before, f.srv.Requests(), "no HTTP on cache hit")
	assert.Equal(t, first, second)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.monitor.Cache.WithLabelValues("hit")))
}

func TestCacheStale(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}
	ctx := context.Background()

	f.coord.Retrieve(ctx, ud, false)
	before := f.srv.Requests()

	ud.stale = true
	f.srv.AddCatalog(models.Rema1000.ID, "cat2",
		tjektest.Hotspot("n1", "Mælk", 10, "l", 1, 1, tjektest.RunFrom, tjektest.RunTill))

	got := f.coord.Retrieve(ctx, ud, false)
	assert.Greater(t, f.srv.Requests(), before)
	assert.Len(t, got, 4)
	assert.Equal(t, 2, ud.updated)

	cached, err := f.cache.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 4)
}

func TestFavoritesChangedPreempts(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}
	ctx := context.Background()

	f.coord.Retrieve(ctx, ud, false)
	before := f.srv.Requests()

	f.coord.Retrieve(ctx, ud, true)
	assert.Greater(t, f.srv.Requests(), before)
}

func TestFingerprintMismatchPreempts(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	f.srv.AddCatalog(models.Netto.ID, "n-cat",
		tjektest.Hotspot("n1", "Smør", 18, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill))
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000, models.Netto}}
	ctx := context.Background()

	require.Len(t, f.coord.Retrieve(ctx, ud, false), 4)

	// caller forgot to flag the change
	ud.favorites = []models.Dealer{models.Netto}
	got := f.coord.Retrieve(ctx, ud, false)
	require.Len(t, got, 1)
	assert.Equal(t, "Netto", got[0].Dealer)
}

func TestDedupAcrossCatalogs(t *testing.T) {
	f := newFixture(t)
	f.srv.AddCatalog(models.Netto.ID, "c1",
		tjektest.Hotspot("id-1", "Smør", 18, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill))
	f.srv.AddCatalog(models.Netto.ID, "c2",
		tjektest.Hotspot("id-2", "Smør", 18, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill))
	ud := &fakeUserData{favorites: []models.Dealer{models.Netto}}

	got := f.coord.Retrieve(context.Background(), ud, false)
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ID)
}

func TestNonOKStatusSkipsCacheWrite(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}
	ctx := context.Background()

	previous := f.coord.Retrieve(ctx, ud, false)
	require.Len(t, previous, 3)

	f.srv.FailPath("/catalogs", http.StatusServiceUnavailable)
	ud.stale = true

	got := f.coord.Retrieve(ctx, ud, false)
	assert.Empty(t, got)
	assert.Equal(t, 1, ud.updated, "cache_updated not signalled")

	cached, err := f.cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, previous, cached, "previous cache preserved")
}

func TestNonOKStatusNoCache(t *testing.T) {
	f := newFixture(t)
	f.srv.FailPath("/catalogs", http.StatusServiceUnavailable)
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000, models.Netto}}

	got := f.coord.Retrieve(context.Background(), ud, false)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, ud.updated)
}

type flakyFetcher struct {
	DealerFetcher
	failKey string
}

func (f flakyFetcher) GetByDealer(ctx context.Context, d models.Dealer) ([]models.Offer, error) {
	if d.Key == f.failKey {
		return nil, errors.New("connection reset")
	}
	return f.DealerFetcher.GetByDealer(ctx, d)
}

func TestOneDealerFailingDoesNotAbortPeers(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Netto, models.Rema1000}}

	fetcher := flakyFetcher{
		DealerFetcher: usecases.NewDealerOffersService(tjek.New(f.srv.Client(), f.srv.URL, nil), nil, f.monitor, 2),
		failKey:       models.Netto.Key,
	}
	coord := NewCoordinator(fetcher, f.cache, nil, f.monitor, 2)

	got := coord.Retrieve(context.Background(), ud, false)
	assert.Len(t, got, 3)
	for _, o := range got {
		assert.Equal(t, "Rema 1000", o.Dealer)
	}
}

func TestCacheWriteFailureStillReturns(t *testing.T) {
	f := newFixture(t)
	f.addRemaCatalog()
	ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000}}

	broken := jsonfile.New("", nil)
	m := metrics.New()
	fetcher := usecases.NewDealerOffersService(tjek.New(f.srv.Client(), f.srv.URL, nil), nil, m, 2)
	coord := NewCoordinator(fetcher, broken, nil, m, 2)

	got := coord.Retrieve(context.Background(), ud, false)
	assert.Len(t, got, 3)
	assert.Zero(t, ud.updated)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Cache.WithLabelValues("write_error")))
}

func TestDeterministicOrder(t *testing.T) {
	build := func() []models.Offer {
		f := newFixture(t)
		f.srv.AddCatalog(models.Netto.ID, "c1",
			tjektest.Hotspot("a", "Ost", 10, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill),
			tjektest.Hotspot("b", "Brød", 10, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill))
		f.srv.AddCatalog(models.Rema1000.ID, "c2",
			tjektest.Hotspot("c", "Ost", 10, "stk", 1, 1, tjektest.RunFrom, tjektest.RunTill))
		ud := &fakeUserData{favorites: []models.Dealer{models.Rema1000, models.Netto}}
		return f.coord.Retrieve(context.Background(), ud, false)
	}

	first := build()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, build())
	}
	require.Len(t, first, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{first[0].ID, first[1].ID, first[2].ID})
}
