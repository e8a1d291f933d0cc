package server

import (
	"errors"
	"net/http"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	"github.com/rs/zerolog/log"
)

func (s *Server) ProfileGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, "profile.html", http.StatusOK, s.pageData(r))
	}
}

// ProfilePostHandler renames the signed-in user
func (s *Server) ProfilePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(r); err != nil {
			redirectWithError(w, r, RouteProfile, err.Error())
			return
		}

		form := profileForm{Name: formValue(r, "name")}
		if err := s.validateForm(form); err != nil {
			redirectWithError(w, r, RouteProfile, err.Error())
			return
		}

		if err := tabFrom(r).Session.UpdateAccount(r.Context(), form.Name); err != nil {
			redirectWithError(w, r, accountErrorPath(r, err), err.Error())
			return
		}
		redirectWithNotice(w, r, RouteProfile, msgProfileUpdated)
	}
}

func (s *Server) ProfileDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := tabFrom(r)
		deleted, err := tab.Session.DeleteMyAccount(r.Context())
		if err != nil {
			log.Err(err).Str("tab", tab.ID).Msg("ProfileDeleteHandler: delete failed")
			redirectWithError(w, r, accountErrorPath(r, err), msgDeleteFailed+err.Error())
			return
		}
		if deleted {
			redirectWithNotice(w, r, RouteLogin, msgAccountDeleted)
			return
		}
		redirectSuccess(w, r, RouteProfile)
	}
}

// accountErrorPath is where a failed account operation lands. A tab that lost its
// session goes to the login page.
func accountErrorPath(r *http.Request, err error) string {
	if errors.Is(err, apperrors.ErrNotAuthenticated) || !tabFrom(r).Session.Authenticated() {
		return RouteLogin
	}
	return RouteProfile
}
