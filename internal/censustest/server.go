// Package censustest provides an in-memory census service speaking the
// same REST protocol as the production one. Tests mount it behind
// httptest; `census dev-server` serves it on a local port.
package censustest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mark3labs/census/internal/api"
	"github.com/mark3labs/census/internal/auth"
	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/validate"
)

// Route names used by Calls.
const (
	RouteLogin    = "login"
	RouteRegister = "register"
	RouteMe       = "me"
	RouteCreate   = "create"
	RouteList     = "list"
	RouteGet      = "get"
	RouteSubmit   = "submit"
	RouteComplete = "complete"
	RouteValidate = "validate"
)

type user struct {
	id       string
	username string
	hash     []byte
	role     string
}

// Server is a fake census service. The zero value is not usable; call New.
type Server struct {
	mu        sync.Mutex
	secret    string
	users     map[string]*user
	records   map[string]census.Record
	owners    map[string]string
	nextRow   census.RowID
	validator *validate.Validator
	now       func() time.Time

	calls          map[string]int
	failures       map[string][]int
	completeStatus census.Status
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = secret }
}

// WithClock sets the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   "census-dev-secret",
		users:    make(map[string]*user),
		records:  make(map[string]census.Record),
		owners:   make(map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string][]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	v, err := validate.New(validate.WithClock(s.now))
	if err != nil {
		panic(err)
	}
	s.validator = v
	return s
}

// Handler returns the router with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.secret))

			r.Get("/auth/me", s.me)
			r.Post("/forms", s.createRecord)
			r.Get("/forms/agent", s.listRecords)
			r.Get("/forms/{id}", s.getRecord)
			r.Post("/forms/{id}/step{n}", s.submitStep)
			r.Post("/forms/{id}/complete", s.completeRecord)
			r.Get("/forms/{id}/validate", s.validateRecord)
		})
	})
	return r
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(username, password, role string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(username, password, role)
}

func (s *Server) addUser(username, password, role string) (string, error) {
	if _, ok := s.users[username]; ok {
		return "", errors.New("username already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	u := &user{id: uuid.NewString(), username: username, hash: hash, role: role}
	s.users[username] = u
	return u.id, nil
}

// Token issues a bearer token for an existing account.
func (s *Server) Token(username string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("unknown user")
	}
	return auth.GenerateToken(s.secret, u.id, u.username, u.role)
}

// SeedRecord stores rec as owned by username. An empty id is filled in.
func (s *Server) SeedRecord(username string, rec census.Record) (census.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return census.Record{}, errors.New("unknown user")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CurrentStep == 0 {
		rec.CurrentStep = census.StepLocation
	}
	if rec.Status == "" {
		rec.Status = census.StatusInProgress
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.records[rec.ID] = rec.Clone()
	s.owners[rec.ID] = u.id
	return rec, nil
}

// Record returns the stored copy of a record.
func (s *Server) Record(id string) (census.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec.Clone(), ok
}

// Calls reports how many requests a route has served.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// FailNext makes the next len(statuses) requests to route answer with
// the given HTTP statuses, in order.
func (s *Server) FailNext(route string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], statuses...)
}

// SetCompleteStatus overrides the status a completion stores. An empty
// status restores the default.
func (s *Server) SetCompleteStatus(status census.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeStatus = status
}

// hit counts a request and reports an injected failure, if any.
func (s *Server) hit(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[route]++
	queue := s.failures[route]
	if len(queue) == 0 {
		return 0
	}
	s.failures[route] = queue[1:]
	return queue[0]
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteRegister); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	var reg api.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reg.Username == "" || len(reg.Password) < 6 {
		writeError(w, http.StatusBadRequest, "username and a password of at least 6 characters are required")
		return
	}
	if reg.Role == "" {
		reg.Role = api.Roles[0]
	}

	s.mu.Lock()
	id, err := s.addUser(reg.Username, reg.Password, reg.Role)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, "Registration successful", api.User{ID: id, Username: reg.Username, Name: reg.Username, Role: reg.Role})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteLogin); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[creds.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(s.secret, u.id, u.username, u.role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteMe); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	claims := auth.GetUser(r.Context())
	writeJSON(w, http.StatusOK, "", api.User{ID: claims.UserID, Username: claims.Username, Name: claims.Username, Role: claims.Role})
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteCreate); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	claims := auth.GetUser(r.Context())

	s.mu.Lock()
	rec := census.Record{
		ID:          uuid.NewString(),
		CurrentStep: census.StepLocation,
		Status:      census.StatusInProgress,
		CreatedAt:   s.now().UTC(),
	}
	s.records[rec.ID] = rec
	s.owners[rec.ID] = claims.UserID
	s.mu.Unlock()

	logger.Debug("Created record %s for %s", rec.ID, claims.Username)
	writeJSON(w, http.StatusCreated, "Record created", rec)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteList); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	claims := auth.GetUser(r.Context())

	s.mu.Lock()
	recs := make([]census.Record, 0)
	for id, rec := range s.records {
		if s.owners[id] == claims.UserID {
			recs = append(recs, rec.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, "", recs)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteGet); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	rec, ok := s.owned(r)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, "", rec)
}

func (s *Server) submitStep(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteSubmit); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	step := census.Step(n)
	if err != nil || !step.Valid() {
		writeError(w, http.StatusNotFound, "unknown step")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload, err := census.DecodePayload(step, body, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := s.validator.ForStep(step)(payload); !errs.Empty() {
		writeError(w, http.StatusBadRequest, errs.String())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ownedLocked(r)
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "record not found")
		return
	case rec.Completed():
		writeError(w, http.StatusConflict, "record is already completed")
		return
	case step > rec.CurrentStep:
		writeError(w, http.StatusBadRequest, "step is ahead of the record's current step")
		return
	}

	if rc, ok := payload.(census.RowCollection); ok {
		payload = rc.AssignPlaceholders(func() census.RowID {
			s.nextRow++
			return s.nextRow
		})
	}
	if nz, ok := payload.(census.Normalizer); ok {
		payload = nz.Normalize()
	}
	rec, err = rec.WithPayload(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if next := min(step+1, census.LastStep); next > rec.CurrentStep {
		rec.CurrentStep = next
	}
	s.records[rec.ID] = rec
	writeJSON(w, http.StatusOK, "Step saved", rec.Clone())
}

func (s *Server) completeRecord(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteComplete); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.ownedLocked(r)
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "record not found")
		return
	case rec.CurrentStep != census.LastStep || rec.Step8Data == nil:
		writeError(w, http.StatusBadRequest, "all steps must be submitted before completion")
		return
	}
	rec.Status = census.StatusCompleted
	if s.completeStatus != "" {
		rec.Status = s.completeStatus
	}
	s.records[rec.ID] = rec
	writeJSON(w, http.StatusOK, "Record completed", rec.Clone())
}

func (s *Server) validateRecord(w http.ResponseWriter, r *http.Request) {
	if status := s.hit(RouteValidate); status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	rec, ok := s.owned(r)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	report := api.ValidationReport{Valid: true, Errors: map[string][]string{}}
	for _, step := range census.AllSteps() {
		p, ok := rec.Payload(step)
		if !ok {
			report.Valid = false
			report.Errors[step.Info().Key] = []string{step.Title() + " has not been submitted"}
			continue
		}
		for key, msg := range s.validator.ForStep(step)(p) {
			report.Valid = false
			path := step.Info().Key + "." + key
			report.Errors[path] = append(report.Errors[path], msg)
		}
	}
	writeJSON(w, http.StatusOK, "", report)
}

func (s *Server) owned(r *http.Request) (census.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownedLocked(r)
}

func (s *Server) ownedLocked(r *http.Request) (census.Record, bool) {
	id := chi.URLParam(r, "id")
	rec, ok := s.records[id]
	if !ok || s.owners[id] != auth.GetUser(r.Context()).UserID {
		return census.Record{}, false
	}
	return rec.Clone(), true
}

type envelope struct {
	Data      any    `json:"data"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Data:      data,
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message, nil)
}
