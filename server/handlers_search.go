package server

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	"github.com/makita-adocao/makita-web/search"
	"github.com/rs/zerolog/log"
)

// HomeHandler shows the landing carousel, or the search results when the URL
// carries any filter parameter
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := tabFrom(r)
		data := s.pageData(r)
		if r.URL.RawQuery != "" {
			data.SearchAction = RouteSearch + "?" + r.URL.RawQuery
		}

		view, err := tab.Search.Sync(r.Context(), r.URL.Query())
		data.Filter = view.Filter
		data.Searching = view.Search
		data.Animals = view.Results
		if err != nil {
			log.Err(err).Str("tab", tab.ID).Msg("HomeHandler: search failed")
			data.Error = err.Error()
		}

		if !view.Search {
			landing, err := tab.Search.Landing(r.Context())
			if err != nil {
				log.Err(err).Str("tab", tab.ID).Msg("HomeHandler: landing fetch failed")
				data.Error = err.Error()
			}
			data.Animals = landing
		}

		s.render(w, "home.html", http.StatusOK, data)
	}
}

// ApplyFiltersHandler turns the filter form into page URL parameters. Other
// parameters already on the URL are kept, except one-shot messages.
func (s *Server) ApplyFiltersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(r); err != nil {
			redirectWithError(w, r, RouteHome, err.Error())
			return
		}

		f := search.ParseFilter(r.PostForm)
		values := f.Apply(r.URL.Query())
		values.Del(paramError)
		values.Del(paramNotice)
		path := RouteHome
		if encoded := values.Encode(); encoded != "" {
			path += "?" + encoded
		}
		redirectSuccess(w, r, path)
	}
}

func (s *Server) ResetFiltersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabFrom(r).Search.Reset()
		redirectSuccess(w, r, RouteHome)
	}
}

func (s *Server) AnimalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)

		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id <= 0 {
			s.render(w, "not_found.html", http.StatusNotFound, data)
			return
		}

		animal, err := s.animals.GetAnimal(r.Context(), id)
		if errors.Is(err, apperrors.ErrNotFound) {
			s.render(w, "not_found.html", http.StatusNotFound, data)
			return
		}
		if err != nil {
			log.Err(err).Int("animal", id).Msg("AnimalHandler: fetch failed")
			redirectWithError(w, r, RouteHome, err.Error())
			return
		}

		data.Animal = animal
		s.render(w, "animal.html", http.StatusOK, data)
	}
}
