// Package search keeps the animal search filters in the URL and runs the
// search they describe.
package search

import (
	"net/url"
	"strings"
)

// URL parameters. The free text is "q" in the page URL and "query" towards the API.
const (
	ParamQuery    = "q"
	ParamSpecies  = "species"
	ParamSex      = "sex"
	APIParamQuery = "query"
)

type Species string

const (
	SpeciesAny Species = "todos"
	SpeciesCat Species = "gato"
	SpeciesDog Species = "cachorro"
)

// AllSpecies is the order options are offered in
var AllSpecies = []Species{SpeciesAny, SpeciesCat, SpeciesDog}

func ParseSpecies(v string) Species {
	switch Species(strings.ToLower(strings.TrimSpace(v))) {
	case SpeciesCat:
		return SpeciesCat
	case SpeciesDog:
		return SpeciesDog
	default:
		return SpeciesAny
	}
}

func (s Species) Label() string {
	switch s {
	case SpeciesCat:
		return "Gato"
	case SpeciesDog:
		return "Cachorro"
	default:
		return "Todos"
	}
}

type Sex string

const (
	SexAny    Sex = "todos"
	SexMale   Sex = "macho"
	SexFemale Sex = "fêmea"
)

var AllSexes = []Sex{SexAny, SexMale, SexFemale}

func ParseSex(v string) Sex {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case string(SexMale):
		return SexMale
	case string(SexFemale), "femea":
		return SexFemale
	default:
		return SexAny
	}
}

func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "Macho"
	case SexFemale:
		return "Fêmea"
	default:
		return "Todos"
	}
}

// Filter is the search described by a page URL. The zero value is "no filter".
type Filter struct {
	Query   string
	Species Species
	Sex     Sex
}

// ParseFilter reads the filter from page URL parameters
func ParseFilter(values url.Values) Filter {
	return Filter{
		Query:   strings.TrimSpace(values.Get(ParamQuery)),
		Species: ParseSpecies(values.Get(ParamSpecies)),
		Sex:     ParseSex(values.Get(ParamSex)),
	}
}

// Normalize trims the query and folds unknown dimensions to "todos"
func (f Filter) Normalize() Filter {
	return Filter{
		Query:   strings.TrimSpace(f.Query),
		Species: ParseSpecies(string(f.Species)),
		Sex:     ParseSex(string(f.Sex)),
	}
}

// IsActive reports whether any dimension narrows the search.
// An inactive filter means the landing page, an active one the results page.
func (f Filter) IsActive() bool {
	n := f.Normalize()
	return n.Query != "" || n.Species != SpeciesAny || n.Sex != SexAny
}

// Apply writes the filter into a copy of values. Other parameters are kept and
// default dimensions are removed rather than written.
func (f Filter) Apply(values url.Values) url.Values {
	n := f.Normalize()
	out := url.Values{}
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}

	setOrDelete(out, ParamQuery, n.Query, n.Query != "")
	setOrDelete(out, ParamSpecies, string(n.Species), n.Species != SpeciesAny)
	setOrDelete(out, ParamSex, string(n.Sex), n.Sex != SexAny)
	return out
}

// Encode is the canonical query string of the filter alone ("" when inactive)
func (f Filter) Encode() string {
	return f.Apply(nil).Encode()
}

// Path is the home page URL showing this filter
func (f Filter) Path() string {
	if q := f.Encode(); q != "" {
		return "/?" + q
	}
	return "/"
}

// APIParams converts the filter to the parameter names /api/animals expects
func (f Filter) APIParams() url.Values {
	n := f.Normalize()
	out := url.Values{}
	if n.Query != "" {
		out.Set(APIParamQuery, n.Query)
	}
	if n.Sex != SexAny {
		out.Set(ParamSex, string(n.Sex))
	}
	if n.Species != SpeciesAny {
		out.Set(ParamSpecies, string(n.Species))
	}
	return out
}

func setOrDelete(values url.Values, key, value string, set bool) {
	if set {
		values.Set(key, value)
		return
	}
	values.Del(key)
}
