// Package apifake serves an in-memory version of the adoption API for tests.
package apifake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/makita-adocao/makita-web/animals"
)

type fakeUser struct {
	ID       int
	Name     string
	Email    string
	Password string
}

// RecordedRequest is what the fake saw for one call
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          map[string]string
}

type FakeAPI struct {
	server *httptest.Server

	lock        sync.Mutex
	nextUserID  int
	users       map[string]*fakeUser // email -> user
	tokens      map[string]string    // access token -> email
	resetTokens map[string]string    // reset token -> email
	animals     []animals.Animal
	requests    []RecordedRequest

	// ForceStatus makes "METHOD /path" answer with the status and a message body
	ForceStatus map[string]int
	// BeforeSearch runs before a filtered /api/animals response is written
	BeforeSearch func(r *http.Request)
}

// New starts the fake and closes it when the test ends
func New(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		nextUserID:  1,
		users:       make(map[string]*fakeUser),
		tokens:      make(map[string]string),
		resetTokens: make(map[string]string),
		ForceStatus: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/animals", f.listAnimals)
	mux.HandleFunc("GET /api/animals/{id}", f.getAnimal)
	mux.HandleFunc("POST /api/login", f.login)
	mux.HandleFunc("POST /api/register", f.register)
	mux.HandleFunc("POST /api/forgot-password", f.forgotPassword)
	mux.HandleFunc("POST /api/reset-password", f.resetPassword)
	mux.HandleFunc("GET /api/profile", f.getProfile)
	mux.HandleFunc("PUT /api/profile", f.updateProfile)
	mux.HandleFunc("DELETE /api/profile", f.deleteProfile)

	f.server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeAPI) URL() string {
	return f.server.URL
}

func (f *FakeAPI) AddUser(name, email, password string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.users[email] = &fakeUser{ID: f.nextUserID, Name: name, Email: email, Password: password}
	f.nextUserID++
}

func (f *FakeAPI) User(email string) (name, password string, ok bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	u, ok := f.users[email]
	if !ok {
		return "", "", false
	}
	return u.Name, u.Password, true
}

// IssueToken returns a valid access token for email
func (f *FakeAPI) IssueToken(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := uuid.NewString()
	f.tokens[token] = email
	return token
}

func (f *FakeAPI) IssueResetToken(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := "reset-" + uuid.NewString()
	f.resetTokens[token] = email
	return token
}

func (f *FakeAPI) AddAnimal(a animals.Animal) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.animals = append(f.animals, a)
}

func (f *FakeAPI) Requests() []RecordedRequest {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo filters recorded requests by method and path
func (f *FakeAPI) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}

		f.lock.Lock()
		f.requests = append(f.requests, rec)
		forced := f.ForceStatus[r.Method+" "+r.URL.Path]
		f.lock.Unlock()

		if forced != 0 {
			writeMessage(w, forced, http.StatusText(forced))
			return
		}

		r = r.WithContext(withBody(r.Context(), rec.Body))
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) listAnimals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.ToLower(strings.TrimSpace(q.Get("query")))
	species := strings.ToLower(q.Get("species"))
	sex := strings.ToLower(q.Get("sex"))

	if len(q) > 0 && f.BeforeSearch != nil {
		f.BeforeSearch(r)
	}

	f.lock.Lock()
	var out []animals.Animal
	for _, a := range f.animals {
		if query != "" && !strings.Contains(strings.ToLower(a.Name), query) && !strings.Contains(strings.ToLower(a.Description), query) {
			continue
		}
		if !isAny(species) && strings.ToLower(a.Species) != species {
			continue
		}
		if !isAny(sex) && strings.ToLower(a.Sex) != sex {
			continue
		}
		out = append(out, a)
	}
	f.lock.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if out == nil {
		out = []animals.Animal{}
	}
	writeJSON(w, http.StatusOK, out)
}

func isAny(v string) bool {
	return v == "" || v == "todos" || v == "all"
}

func (f *FakeAPI) getAnimal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Animal nao encontrado")
		return
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, a := range f.animals {
		if a.ID == id {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Animal nao encontrado")
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	f.lock.Lock()
	u, ok := f.users[body["email"]]
	f.lock.Unlock()
	if !ok || u.Password != body["password"] {
		writeMessage(w, http.StatusUnauthorized, "Credenciais invalidas")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": f.IssueToken(u.Email)})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	if body["name"] == "" || body["email"] == "" || body["password"] == "" {
		writeMessage(w, http.StatusBadRequest, "Dados incompletos")
		return
	}
	if _, _, exists := f.User(body["email"]); exists {
		writeMessage(w, http.StatusConflict, "E-mail ja cadastrado")
		return
	}
	f.AddUser(body["name"], body["email"], body["password"])
	writeMessage(w, http.StatusCreated, "Usuario criado!")
}

func (f *FakeAPI) forgotPassword(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Se o email existir, enviaremos um link de recuperacao")
}

func (f *FakeAPI) resetPassword(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)
	body := bodyFrom(r.Context())

	f.lock.Lock()
	defer f.lock.Unlock()
	email, ok := f.resetTokens[token]
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token has expired")
		return
	}
	if body["newPassword"] == "" {
		writeMessage(w, http.StatusBadRequest, "Nova senha e obrigatoria")
		return
	}
	f.users[email].Password = body["newPassword"]
	writeMessage(w, http.StatusOK, "Senha alterada com sucesso!")
}

func (f *FakeAPI) authenticated(w http.ResponseWriter, r *http.Request) (*fakeUser, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	email, ok := f.tokens[bearer(r)]
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token invalido")
		return nil, false
	}
	u, ok := f.users[email]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Usuario nao encontrado")
		return nil, false
	}
	return u, true
}

func (f *FakeAPI) getProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := f.authenticated(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": u.Name, "email": u.Email})
}

func (f *FakeAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := f.authenticated(w, r)
	if !ok {
		return
	}
	name := bodyFrom(r.Context())["name"]
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "Nome e obrigatorio")
		return
	}
	f.lock.Lock()
	u.Name = name
	f.lock.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Perfil atualizado!", "name": name})
}

func (f *FakeAPI) deleteProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := f.authenticated(w, r)
	if !ok {
		return
	}
	f.lock.Lock()
	delete(f.users, u.Email)
	for token, email := range f.tokens {
		if email == u.Email {
			delete(f.tokens, token)
		}
	}
	f.lock.Unlock()
	writeMessage(w, http.StatusOK, "Conta deletada com sucesso.")
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
