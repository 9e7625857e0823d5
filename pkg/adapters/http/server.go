package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/lantern"
	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/flow"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/zodiac"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSessions bounds the open controllers of a Server.
const DefaultMaxSessions = 1000

// Backend opens controllers and journey stores for a session key.
// It is satisfied by *cli.Services.
type Backend interface {
	NewController(ctx context.Context, key string, extra ...flow.Option) (*flow.Controller, error)
	JourneyStore(key string) *journey.Store
}

// Server hosts one flow controller per session behind a JSON API.
type Server struct {
	backend Backend
	metrics http.Handler
	logger  *slog.Logger
	router  chi.Router

	maxSessions int

	// mu serializes opening so one id never gets two controllers.
	mu       sync.Mutex
	sessions *lru.Cache[string, *flow.Controller]
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts a metrics handler on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxSessions bounds the open sessions. Beyond it the least recently
// used session is closed; its journey stays stored and can be reopened.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// NewServer creates the host API over backend.
func NewServer(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:     backend,
		logger:      logging.NewNop(),
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Only fails for a non-positive size, which WithMaxSessions prevents.
	s.sessions, _ = lru.NewWithEvict(s.maxSessions, s.evicted)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/zodiac", s.getZodiac)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Post("/", s.openSession)
		r.Get("/", s.getSession)
		r.Delete("/", s.deleteSession)
		r.Post("/birthdate", s.selectBirthdate)
		r.Post("/entry", s.completeEntry)
		r.Post("/wishes", s.submitWish)
		r.Post("/exit", s.completeExit)
		r.Post("/another", s.writeAnother)
		r.Put("/identity", s.setIdentity)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close closes every open controller.
func (s *Server) Close() {
	s.sessions.Purge()
}

func (s *Server) evicted(id string, c *flow.Controller) {
	c.Close()
	s.logger.Debug("session closed", "session_id", id)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionView is the representation of an open session.
type SessionView struct {
	ID        string              `json:"id"`
	Flow      domain.FlowState    `json:"flow"`
	Journey   domain.JourneyState `json:"journey"`
	ShareLink string              `json:"share_link,omitempty"`
}

// ZodiacView is the response of GET /zodiac.
type ZodiacView struct {
	Date        string         `json:"date"`
	Animal      domain.Animal  `json:"animal"`
	Element     domain.Element `json:"element"`
	CycleYear   int            `json:"cycle_year"`
	Approximate bool           `json:"approximate"`
}

// RevealView is the response of POST /sessions/{id}/birthdate.
type RevealView struct {
	Token flow.Token       `json:"token"`
	Sign  domain.Sign      `json:"sign"`
	Flow  domain.FlowState `json:"flow"`
}

// SubmissionView is the response of POST /sessions/{id}/wishes.
type SubmissionView struct {
	Wish      domain.Wish      `json:"wish"`
	LanternID string           `json:"lantern_id,omitempty"`
	Token     flow.Token       `json:"token"`
	Flow      domain.FlowState `json:"flow"`
}

type tokenBody struct {
	Token flow.Token `json:"token"`
}

type birthdateBody struct {
	Date string `json:"date"`
}

type wishBody struct {
	Text string `json:"text"`
}

type identityBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	open := s.sessions.Len()

	writeJSON(w, http.StatusOK, map[string]any{
		"app":      "lantern-http",
		"version":  strings.TrimSpace(lantern.Version),
		"sessions": open,
	})
}

func (s *Server) getZodiac(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	res, err := zodiac.Calculate(date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ZodiacView{
		Date:        date,
		Animal:      res.Animal,
		Element:     res.Element,
		CycleYear:   res.CycleYear,
		Approximate: res.Approximate,
	})
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	c, ok := s.sessions.Get(id)
	status := http.StatusOK
	if !ok {
		var err error
		c, err = s.backend.NewController(r.Context(), id)
		if err != nil {
			s.mu.Unlock()
			s.writeError(w, err)
			return
		}
		if s.sessions.Add(id, c) {
			s.logger.Info("session limit reached, closed least recently used", "max_sessions", s.maxSessions)
		}
		status = http.StatusCreated
		s.logger.Info("session opened", "session_id", id, "phase", c.State().Phase)
	}
	s.mu.Unlock()

	s.writeSession(w, r, status, id, c)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeSession(w, r, http.StatusOK, id, c)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Remove closes the controller through the eviction callback.
	if !s.sessions.Remove(id) {
		s.writeError(w, errUnknownSession)
		return
	}

	if _, err := s.backend.JourneyStore(id).Dispatch(r.Context(), domain.Clear{}); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectBirthdate(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var body birthdateBody
	if !s.decode(w, r, &body) {
		return
	}

	token, sign, err := c.SelectBirthdate(r.Context(), body.Date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RevealView{Token: token, Sign: sign, Flow: c.State()})
}

func (s *Server) completeEntry(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var body tokenBody
	if !s.decode(w, r, &body) {
		return
	}

	if err := c.CompleteEntry(r.Context(), body.Token); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id, c)
}

func (s *Server) submitWish(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var body wishBody
	if !s.decode(w, r, &body) {
		return
	}

	sub, err := c.SubmitWish(r.Context(), body.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SubmissionView{
		Wish:      sub.Wish,
		LanternID: sub.Record.ID,
		Token:     sub.Token,
		Flow:      c.State(),
	})
}

func (s *Server) completeExit(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var body tokenBody
	if !s.decode(w, r, &body) {
		return
	}

	if err := c.CompleteExit(r.Context(), body.Token); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id, c)
}

func (s *Server) writeAnother(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := c.WriteAnother(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id, c)
}

func (s *Server) setIdentity(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.session(w, r)
	if !ok {
		return
	}
	var body identityBody
	if !s.decode(w, r, &body) {
		return
	}

	j, err := c.SetIdentity(r.Context(), body.Name, body.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

var errUnknownSession = errors.New("unknown session")

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *flow.Controller, bool) {
	id := chi.URLParam(r, "id")
	c, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, errUnknownSession)
	}
	return id, c, ok
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, id string, c *flow.Controller) {
	j, err := c.Journey(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	link, _ := c.ShareLink()
	writeJSON(w, status, SessionView{ID: id, Flow: c.State(), Journey: j, ShareLink: link})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

// StatusFor maps a journey error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrStaleCompletion),
		errors.Is(err, domain.ErrControllerClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrEmptyWish),
		errors.Is(err, domain.ErrWishTooLong),
		errors.Is(err, domain.ErrDuplicateWish),
		errors.Is(err, domain.ErrInvalidWishText),
		errors.Is(err, domain.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrUnconfirmed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnreachable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrLanternNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := errorBody{Error: err.Error()}
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		body.Kind = string(gwErr.Kind)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Debug("request refused", "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
