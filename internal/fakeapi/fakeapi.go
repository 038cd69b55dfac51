// Package fakeapi is an in-memory stand-in for the remote admin API, served
// over httptest. It implements the auth endpoints and generic JSON
// collections, and lets tests inject one-shot failures.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type account struct {
	record   map[string]any
	email    string
	password string
}

type failure struct {
	status  int
	message string
}

type collection struct {
	nextID int64
	items  []map[string]any
}

type Server struct {
	*httptest.Server

	lock        sync.Mutex
	accounts    []*account
	tokens      map[string]int64
	tokenSeq    int
	collections map[string]*collection
	failures    map[string]failure
	calls       []string
	omitToken   bool
	omitUser    bool
	meBody      *string
}

// New starts a fake API that is closed when the test ends. The materials,
// clients and purchases collections exist from the start.
func New(t testing.TB) *Server {
	s := &Server{
		tokens:      make(map[string]int64),
		collections: make(map[string]*collection),
		failures:    make(map[string]failure),
	}
	for _, name := range []string{"materials", "clients", "purchases"} {
		s.collections[name] = &collection{nextID: 1}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", s.handleAuth)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /auth_me", s.handleMe)
	mux.HandleFunc("GET /{collection}", s.requireToken(s.handleList))
	mux.HandleFunc("POST /{collection}", s.requireToken(s.handleCreate))
	mux.HandleFunc("PUT /{collection}/{id}", s.requireToken(s.handleUpdate))
	mux.HandleFunc("DELETE /{collection}/{id}", s.requireToken(s.handleDelete))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(name, email, password string) int64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := int64(len(s.accounts) + 1)
	s.accounts = append(s.accounts, &account{
		record:   map[string]any{"id": id, "name": name, "email": email},
		email:    email,
		password: password,
	})
	return id
}

// IssueToken returns a valid token for userID without going through /auth.
func (s *Server) IssueToken(userID int64) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.issueLocked(userID)
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tokens = make(map[string]int64)
}

// OmitToken makes /auth and /register answer 200 without a token.
func (s *Server) OmitToken(omit bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.omitToken = omit
}

// OmitUser makes /auth and /register answer 200 with a token but no user.
func (s *Server) OmitUser(omit bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.omitUser = omit
}

// ReplyMe makes /auth_me answer 200 with body, verbatim, for every valid
// token. An empty body sends no content at all.
func (s *Server) ReplyMe(body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.meBody = &body
}

// Seed appends items to a collection, assigning ids, and returns them.
func (s *Server) Seed(name string, items ...map[string]any) []map[string]any {
	s.lock.Lock()
	defer s.lock.Unlock()
	c := s.collectionLocked(name)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		stored := copyItem(item)
		stored["id"] = c.nextID
		c.nextID++
		c.items = append(c.items, stored)
		out = append(out, copyItem(stored))
	}
	return out
}

// Items returns a copy of a collection's current contents.
func (s *Server) Items(name string) []map[string]any {
	s.lock.Lock()
	defer s.lock.Unlock()
	c := s.collectionLocked(name)
	out := make([]map[string]any, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, copyItem(item))
	}
	return out
}

// FailNext makes the next request matching method and path answer status
// with message (an empty message sends no body).
func (s *Server) FailNext(method, path string, status int, message string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Calls lists every request received as "METHOD /path".
func (s *Server) Calls() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount counts requests matching method and path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.lock.Lock()
		s.calls = append(s.calls, key)
		f, fail := s.failures[key]
		delete(s.failures, key)
		s.lock.Unlock()

		if fail {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]any{"statusCode": f.status, "message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.userForRequest(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": 401, "message": "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	for i, a := range s.accounts {
		if a.email == creds.Email && a.password == creds.Password {
			s.writeSessionLocked(w, int64(i+1), a)
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": 401, "message": "Invalid email or password"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	for _, a := range s.accounts {
		if a.email == reg.Email {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "User already exists"})
			return
		}
	}
	id := int64(len(s.accounts) + 1)
	a := &account{
		record:   map[string]any{"id": id, "fullName": reg.FullName, "email": reg.Email},
		email:    reg.Email,
		password: reg.Password,
	}
	s.accounts = append(s.accounts, a)
	s.writeSessionLocked(w, id, a)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.userForRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": 401, "message": "Unauthorized"})
		return
	}
	s.lock.Lock()
	record := copyItem(s.accounts[id-1].record)
	body := s.meBody
	s.lock.Unlock()

	if body != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(*body))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Items(r.PathValue("collection")))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var item map[string]any
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}
	delete(item, "id")
	created := s.Seed(r.PathValue("collection"), item)
	writeJSON(w, http.StatusCreated, created[0])
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid id"})
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	c := s.collectionLocked(r.PathValue("collection"))
	for i, item := range c.items {
		if itemID(item) == id {
			updated := copyItem(patch)
			updated["id"] = id
			c.items[i] = updated
			writeJSON(w, http.StatusOK, copyItem(updated))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid id"})
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	c := s.collectionLocked(r.PathValue("collection"))
	for i, item := range c.items {
		if itemID(item) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
}

func (s *Server) writeSessionLocked(w http.ResponseWriter, userID int64, a *account) {
	resp := map[string]any{}
	if !s.omitUser {
		resp["user"] = copyItem(a.record)
	}
	if !s.omitToken {
		resp["token"] = s.issueLocked(userID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) issueLocked(userID int64) string {
	s.tokenSeq++
	token := fmt.Sprintf("token-%d-%d", userID, s.tokenSeq)
	s.tokens[token] = userID
	return token
}

func (s *Server) userForRequest(r *http.Request) (int64, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return 0, false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	id, ok := s.tokens[token]
	return id, ok
}

func (s *Server) collectionLocked(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{nextID: 1}
		s.collections[name] = c
	}
	return c
}

func itemID(item map[string]any) int64 {
	switch v := item["id"].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

func copyItem(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
