// Package postmantest provides an in-memory stand-in for the Postman API
// asset endpoints, for use in tests.
package postmantest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Call records one request received by the server.
type Call struct {
	Method string
	Path   string
	Query  string
	APIKey string
	Body   []byte
}

// Asset is a stored environment or collection.
type Asset struct {
	ID   string
	UID  string
	Name string
	Body json.RawMessage // The environment or collection object as last written
}

type failure struct {
	status int
	body   string
}

// Server is an httptest server that keeps assets in memory.
type Server struct {
	*httptest.Server

	apiKey string

	mu           sync.Mutex
	environments []*Asset
	collections  []*Asset
	calls        []Call
	failures     map[string]failure
	nextID       int
}

// NewServer starts a server that accepts only apiKey in X-Api-Key. An empty
// apiKey disables the check.
func NewServer(apiKey string) *Server {
	s := &Server{apiKey: apiKey, failures: make(map[string]failure)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /environments", s.list(&s.environments, "environments"))
	mux.HandleFunc("POST /environments", s.create(&s.environments, "environment"))
	mux.HandleFunc("GET /environments/{uid}", s.get(&s.environments, "environment"))
	mux.HandleFunc("PUT /environments/{uid}", s.update(&s.environments, "environment"))
	mux.HandleFunc("GET /collections", s.list(&s.collections, "collections"))
	mux.HandleFunc("POST /collections", s.create(&s.collections, "collection"))
	mux.HandleFunc("GET /collections/{uid}", s.get(&s.collections, "collection"))
	mux.HandleFunc("PUT /collections/{uid}", s.update(&s.collections, "collection"))

	s.Server = httptest.NewServer(s.intercept(mux))
	return s
}

// SeedEnvironment stores an environment as if it had been created earlier.
// Seeding the same name twice produces duplicates, in seeding order.
func (s *Server) SeedEnvironment(name, uid string, body json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environments = append(s.environments, &Asset{ID: uid, UID: uid, Name: name, Body: body})
}

// SeedCollection stores a collection as if it had been created earlier.
func (s *Server) SeedCollection(name, uid string, body json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, &Asset{ID: uid, UID: uid, Name: name, Body: body})
}

// Fail makes every request matching method and path answer with status and
// body instead of being handled.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Environments returns a snapshot of the stored environments.
func (s *Server) Environments() []Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.environments)
}

// Collections returns a snapshot of the stored collections.
func (s *Server) Collections() []Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.collections)
}

func snapshot(assets []*Asset) []Asset {
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		out = append(out, *a)
	}
	return out
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Header.Get("X-Api-Key")

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			APIKey: key,
			Body:   body,
		})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if s.apiKey != "" && key != s.apiKey {
			writeError(w, http.StatusUnauthorized, "AuthenticationError", "Invalid API Key. Every request requires a valid API Key to be sent.")
			return
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(store *[]*Asset, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		entries := make([]map[string]string, 0, len(*store))
		for _, a := range *store {
			entries = append(entries, map[string]string{"id": a.ID, "name": a.Name, "uid": a.UID})
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{field: entries})
	}
}

func (s *Server) get(store *[]*Asset, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		a := find(*store, r.PathValue("uid"))
		var body json.RawMessage
		if a != nil {
			body = a.Body
		}
		s.mu.Unlock()

		if a == nil {
			writeError(w, http.StatusNotFound, "instanceNotFoundError", "We could not find the "+field+" you are looking for")
			return
		}
		writeJSON(w, http.StatusOK, map[string]json.RawMessage{field: body})
	}
}

func (s *Server) create(store *[]*Asset, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, name, ok := decodeBody(w, r, field)
		if !ok {
			return
		}

		s.mu.Lock()
		s.nextID++
		id := fmt.Sprintf("%s-%d", field, s.nextID)
		a := &Asset{ID: id, UID: "owner-" + id, Name: name, Body: content}
		*store = append(*store, a)
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{field: map[string]string{"id": a.ID, "name": a.Name, "uid": a.UID}})
	}
}

func (s *Server) update(store *[]*Asset, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, name, ok := decodeBody(w, r, field)
		if !ok {
			return
		}

		s.mu.Lock()
		a := find(*store, r.PathValue("uid"))
		if a != nil {
			a.Name = name
			a.Body = content
		}
		s.mu.Unlock()

		if a == nil {
			writeError(w, http.StatusNotFound, "instanceNotFoundError", "We could not find the "+field+" you are looking for")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{field: map[string]string{"id": a.ID, "name": a.Name, "uid": a.UID}})
	}
}

// decodeBody extracts the wrapped asset object and its name. Environments
// carry the name at the top level, collections under info.
func decodeBody(w http.ResponseWriter, r *http.Request, field string) (json.RawMessage, string, bool) {
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		writeError(w, http.StatusBadRequest, "malformedRequestError", "Found 1 errors with the supplied "+field+".")
		return nil, "", false
	}
	content, ok := envelope[field]
	if !ok {
		writeError(w, http.StatusBadRequest, "paramMissingError", "Parameter is missing in the request.")
		return nil, "", false
	}

	var named struct {
		Name string `json:"name"`
		Info struct {
			Name string `json:"name"`
		} `json:"info"`
	}
	if err := json.Unmarshal(content, &named); err != nil {
		writeError(w, http.StatusBadRequest, "malformedRequestError", err.Error())
		return nil, "", false
	}
	name := named.Name
	if field == "collection" {
		name = named.Info.Name
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "malformedRequestError", "Found 1 errors with the supplied "+field+". name is required")
		return nil, "", false
	}
	return content, name, true
}

func find(store []*Asset, uid string) *Asset {
	for _, a := range store {
		if a.UID == uid {
			return a
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"name": name, "message": message}})
}
