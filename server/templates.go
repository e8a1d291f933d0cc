package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/makita-adocao/makita-web/animals"
	"github.com/makita-adocao/makita-web/search"
	"github.com/makita-adocao/makita-web/users"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

// Every page is parsed together with the shared layout
var pageFiles = []string{
	"home.html",
	"animal.html",
	"not_found.html",
	"login.html",
	"signup.html",
	"forgot_password.html",
	"reset_password.html",
	"profile.html",
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

func parsePages() (map[string]*template.Template, error) {
	fsys := TemplateFilesFS()
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.ParseFS(fsys, "layout.html", name)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// PageData is the template model shared by every page
type PageData struct {
	AppName string
	User    *users.User // nil when the tab is anonymous
	Error   string
	Notice  string

	// Search and landing
	Filter       search.Filter
	SearchAction string // filter forms post here, keeping the page's other parameters
	Species      []search.Species
	Sexes        []search.Sex
	Searching    bool
	Animals      []animals.Animal

	Animal *animals.Animal
	Email  string
	Token  string
}

func (s *Server) pageData(r *http.Request) PageData {
	q := r.URL.Query()
	data := PageData{
		AppName:      s.config.GetAppName(),
		Error:        q.Get(paramError),
		Notice:       q.Get(paramNotice),
		Email:        q.Get(paramEmail),
		SearchAction: RouteSearch,
		Species:      search.AllSpecies,
		Sexes:        search.AllSexes,
	}
	if tab := tabFrom(r); tab != nil {
		if user, ok := tab.Session.User(); ok {
			data.User = &user
		}
	}
	return data
}

// render buffers the page so a template error still produces a clean 500
func (s *Server) render(w http.ResponseWriter, page string, status int, data PageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("render: unknown page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err(err).Str("page", page).Msg("render: template failed")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
