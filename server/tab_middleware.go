package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/makita-adocao/makita-web/tabstate"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyTab stores the *tabstate.Tab of the request
const ContextKeyTab ContextKey = "tab"

// TabMiddleware resolves the browser tab from its cookie, issuing a new ID when
// the cookie is missing or malformed. The cookie has no Max-Age so it ends with
// the browser session.
func (s *Server) TabMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tabID string
		if cookie, err := r.Cookie(s.config.GetTabCookieName()); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				tabID = cookie.Value
			}
		}
		if tabID == "" {
			tabID = uuid.NewString()
			s.setTabCookie(w, r, tabID, 0)
		}

		tab := s.tabs.Get(r.Context(), tabID)
		ctx := context.WithValue(r.Context(), ContextKeyTab, tab)
		next(w, r.WithContext(ctx))
	}
}

// RequireSession sends anonymous tabs to the login page
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := tabFrom(r)
		if tab == nil || !tab.Session.Authenticated() {
			redirectWithError(w, r, RouteLogin, msgLoginRequired)
			return
		}
		next(w, r)
	}
}

func tabFrom(r *http.Request) *tabstate.Tab {
	tab, _ := r.Context().Value(ContextKeyTab).(*tabstate.Tab)
	return tab
}

func (s *Server) setTabCookie(w http.ResponseWriter, r *http.Request, tabID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetTabCookieName(),
		Value:    tabID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearTabCookie(w http.ResponseWriter, r *http.Request) {
	s.setTabCookie(w, r, "", -1)
}
