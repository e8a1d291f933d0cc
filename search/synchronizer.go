package search

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/makita-adocao/makita-web/animals"
	"github.com/rs/zerolog/log"
)

// ErrStale is returned by a search that a newer search overtook. Its results
// were not committed; when the fetch itself succeeded they are still returned.
var ErrStale = errors.New("search superseded by a newer one")

// Searcher is the part of the remote API the synchronizer uses
type Searcher interface {
	ListAnimals(ctx context.Context) ([]animals.Animal, error)
	SearchAnimals(ctx context.Context, params url.Values) ([]animals.Animal, error)
}

// View is what a page should show for a URL
type View struct {
	Filter  Filter
	Search  bool // false: landing content, true: search results
	Results []animals.Animal
}

// Synchronizer owns the Result Set of one tab. The last search started wins:
// each search takes a sequence number and only the newest one commits.
type Synchronizer struct {
	api Searcher

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	filter  Filter
	results []animals.Animal
}

func NewSynchronizer(api Searcher) *Synchronizer {
	return &Synchronizer{api: api}
}

// Sync reconciles with the page URL. Without filter parameters nothing is fetched
// and the landing view is returned; otherwise the filter is searched.
func (s *Synchronizer) Sync(ctx context.Context, values url.Values) (View, error) {
	f := ParseFilter(values)
	if !f.IsActive() {
		return View{Filter: f}, nil
	}

	results, err := s.Search(ctx, f)
	if errors.Is(err, ErrStale) {
		if results == nil {
			// overtaken before its fetch completed: this page still shows its own filter
			results, err = s.api.SearchAnimals(ctx, f.APIParams())
			if err != nil {
				return View{Filter: f, Search: true}, err
			}
		}
		return View{Filter: f, Search: true, Results: results}, nil
	}
	if err != nil {
		return View{Filter: f, Search: true}, err
	}
	return View{Filter: f, Search: true, Results: results}, nil
}

// Search runs f against the API and commits the results unless a newer
// search started meanwhile. In that case ErrStale is returned together with
// the uncommitted results of f, or nil results if the fetch failed.
func (s *Synchronizer) Search(ctx context.Context, f Filter) ([]animals.Animal, error) {
	f = f.Normalize()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	results, err := s.api.SearchAnimals(ctx, f.APIParams())

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		log.Debug().Uint64("seq", seq).Uint64("latest", s.seq).Msg("Discarding stale search")
		if err != nil {
			return nil, ErrStale
		}
		if results == nil {
			results = []animals.Animal{}
		}
		return cloneAnimals(results), ErrStale
	}
	s.cancel = nil
	s.filter = f
	if err != nil {
		s.results = nil
		return nil, err
	}
	s.results = results
	return cloneAnimals(results), nil
}

// Reset clears the Result Set and discards any search still in flight
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.filter = Filter{}
	s.results = nil
}

// Landing fetches the unfiltered list shown on the landing page. It does not
// touch the Result Set.
func (s *Synchronizer) Landing(ctx context.Context) ([]animals.Animal, error) {
	return s.api.ListAnimals(ctx)
}

func (s *Synchronizer) Results() []animals.Animal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAnimals(s.results)
}

// Filter is the filter of the last committed search
func (s *Synchronizer) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func cloneAnimals(in []animals.Animal) []animals.Animal {
	if in == nil {
		return nil
	}
	out := make([]animals.Animal, len(in))
	copy(out, in)
	return out
}
