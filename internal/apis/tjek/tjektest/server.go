// Package tjektest serves a fake catalog API for tests.
package tjektest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	catalogs  map[string][]string // dealer id -> catalog ids
	hotspots  map[string][]string // catalog id -> raw hotspot json
	status    map[string]int      // path -> forced status
	requests  atomic.Int64
	lastQuery map[string]string
	headers   http.Header
}

func NewServer() *Server {
	s := &Server{
		catalogs:  map[string][]string{},
		hotspots:  map[string][]string{},
		status:    map[string]int{},
		lastQuery: map[string]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// AddCatalog registers a catalog for a dealer with the given hotspots.
func (s *Server) AddCatalog(dealerID, catalogID string, hotspots ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs[dealerID] = append(s.catalogs[dealerID], catalogID)
	s.hotspots[catalogID] = append(s.hotspots[catalogID], hotspots...)
}

// FailPath makes every request to path answer with status.
func (s *Server) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = status
}

func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) LastQuery(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[path]
}

func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers.Clone()
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastQuery[r.URL.Path] = r.URL.RawQuery
	s.headers = r.Header.Clone()

	if code, ok := s.status[r.URL.Path]; ok {
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"code":%d,"message":"forced failure"}`, code)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/catalogs":
		dealerID := r.URL.Query().Get("dealer_ids")
		parts := make([]string, 0, len(s.catalogs[dealerID]))
		for _, id := range s.catalogs[dealerID] {
			parts = append(parts, fmt.Sprintf(
				`{"id":%q,"dealer_id":%q,"run_from":"2024-03-02T00:00:00+0100","run_till":"2024-03-08T23:59:59+0100","offer_count":%d}`,
				id, dealerID, len(s.hotspots[id])))
		}
		_, _ = fmt.Fprint(w, "["+strings.Join(parts, ",")+"]")

	case strings.HasPrefix(r.URL.Path, "/catalogs/") && strings.HasSuffix(r.URL.Path, "/hotspots"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/catalogs/"), "/hotspots")
		hs, ok := s.hotspots[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(w, `{"code":1002,"message":"not found"}`)
			return
		}
		_, _ = fmt.Fprint(w, "["+strings.Join(hs, ",")+"]")

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Hotspot builds a well-formed hotspot payload.
func Hotspot(id, heading string, price float64, unit string, factor, size float64, from, till string) string {
	return fmt.Sprintf(`{"offer":{"id":%q,"heading":%q,"pricing":{"price":%v},"quantity":{"unit":{"si":{"symbol":%q,"factor":%v}},"size":{"from":%v,"to":%v},"pieces":{"from":1,"to":1}},"run_from":%q,"run_till":%q}}`,
		id, heading, price, unit, factor, size, size, from, till)
}

const (
	RunFrom = "2024-03-02T00:00:00+0100"
	RunTill = "2024-03-08T23:59:59+0100"
)
