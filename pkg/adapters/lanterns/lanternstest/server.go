// Package lanternstest provides an in-process lantern service speaking the
// same HTTP contract as the remote one.
package lanternstest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/adapters/memory"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler serves POST /lanterns/ and GET /lanterns/{id} from an in-memory gateway.
type Handler struct {
	apiKey  string
	store   *memory.Gateway
	logger  *slog.Logger
	router  chi.Router
	mu      sync.Mutex
	failing int // status to answer with, 0 when healthy
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger configures a logger for the Handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a fake service that accepts requests carrying apiKey.
func NewHandler(apiKey string, opts ...Option) *Handler {
	h := &Handler{
		apiKey: apiKey,
		store:  memory.NewGateway(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.authenticate)
	r.Use(h.outage)
	r.Post("/lanterns/", h.create)
	r.Get("/lanterns/{id}", h.get)
	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Lanterns returns every lantern created so far.
func (h *Handler) Lanterns() []domain.LanternRecord {
	return h.store.Lanterns()
}

// FailWith makes every request answer status until it is called with 0.
func (h *Handler) FailWith(status int) {
	h.mu.Lock()
	h.failing = status
	h.mu.Unlock()
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != h.apiKey {
			writeDetail(w, http.StatusUnauthorized, "Invalid API Key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) outage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		status := h.failing
		h.mu.Unlock()
		if status != 0 {
			writeDetail(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.LanternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	rec, err := h.store.CreateLantern(r.Context(), req)
	if err != nil {
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) && gwErr.Kind == domain.GatewayRejected {
			writeDetail(w, http.StatusUnprocessableEntity, gwErr.Detail)
			return
		}
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("lantern created", "lantern_id", rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetLantern(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Lantern not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// NewServer starts an httptest server around a new Handler.
// Callers must Close it.
func NewServer(apiKey string, opts ...Option) (*httptest.Server, *Handler) {
	h := NewHandler(apiKey, opts...)
	return httptest.NewServer(h), h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
