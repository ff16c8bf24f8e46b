// Package api exposes the coordinator over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tweaks-labs/tweaks/internal/coordinator"
	"github.com/tweaks-labs/tweaks/internal/presentation"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

const maxRequestBodySize = 64 << 10 // 64KB

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Coordinator *coordinator.Coordinator
	Messages    presentation.Messages
	Log         *zap.Logger
	// AllowedOrigins enables CORS for browser-based editors. Patterns such as
	// "http://localhost:*" are accepted. Empty disables CORS.
	AllowedOrigins []string
}

// TweakView is the JSON shape of a resolved tweak.
type TweakView struct {
	tweak.Tweak
	Kind       string `json:"kind"`
	Overridden bool   `json:"overridden"`
}

// SectionView is the JSON shape of a presentation section.
type SectionView struct {
	Title string      `json:"title"`
	Items []TweakView `json:"items"`
}

// SetRequest is the body of PUT /tweaks/{id}.
type SetRequest struct {
	Value json.RawMessage `json:"value"`
}

// NewHandler returns the router:
//
//	GET    /healthz
//	GET    /tweaks          ?all=true includes hidden tweaks
//	GET    /sections
//	GET    /sources
//	GET    /tweaks/{id}
//	PUT    /tweaks/{id}     {"value": <bool|number|string>}
//	DELETE /tweaks/{id}     resets to the lower layers
func NewHandler(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.Log))
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", handleHealth())
	r.Get("/tweaks", handleListTweaks(deps))
	r.Get("/sections", handleListSections(deps))
	r.Get("/sources", handleListSources(deps))
	r.Get("/tweaks/{id}", handleGetTweak(deps))
	r.Put("/tweaks/{id}", handleSetTweak(deps))
	r.Delete("/tweaks/{id}", handleResetTweak(deps))

	return r
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleListTweaks(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tweaks []tweak.Tweak
		if r.URL.Query().Get("all") == "true" {
			tweaks = deps.Coordinator.AllTweaks()
		} else {
			tweaks = deps.Coordinator.DisplayableTweaks()
		}
		out := make([]TweakView, 0, len(tweaks))
		for _, t := range tweaks {
			out = append(out, view(deps.Coordinator, t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleListSections(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := presentation.Build(deps.Coordinator.DisplayableTweaks(), deps.Messages.DefaultGroup())
		out := make([]SectionView, 0, m.NumSections())
		for _, s := range m.Sections() {
			sv := SectionView{Title: s.Title, Items: make([]TweakView, 0, len(s.Items))}
			for _, t := range s.Items {
				sv.Items = append(sv.Items, view(deps.Coordinator, t))
			}
			out = append(out, sv)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleListSources(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Coordinator.Sources())
	}
}

func handleGetTweak(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, ok := deps.Coordinator.Tweak(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "tweak %q not found", id)
			return
		}
		writeJSON(w, http.StatusOK, view(deps.Coordinator, t))
	}
}

func handleSetTweak(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, ok := deps.Coordinator.Tweak(id); !ok {
			httpError(w, http.StatusNotFound, "not_found", "tweak %q not found", id)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req SetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Value) == 0 || string(req.Value) == "null" {
			httpError(w, http.StatusUnprocessableEntity, "invalid_value", "value is required")
			return
		}
		var v tweak.Value
		if err := v.UnmarshalJSON(req.Value); err != nil {
			httpError(w, http.StatusUnprocessableEntity, "invalid_value", "invalid value: %v", err)
			return
		}

		if err := deps.Coordinator.Set(id, v); err != nil {
			writeCoordinatorError(w, deps, err)
			return
		}
		t, _ := deps.Coordinator.Tweak(id)
		writeJSON(w, http.StatusOK, view(deps.Coordinator, t))
	}
}

func handleResetTweak(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := deps.Coordinator.Reset(id); err != nil {
			writeCoordinatorError(w, deps, err)
			return
		}
		t, ok := deps.Coordinator.Tweak(id)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, view(deps.Coordinator, t))
	}
}

func view(c *coordinator.Coordinator, t tweak.Tweak) TweakView {
	return TweakView{
		Tweak:      t,
		Kind:       t.Kind().String(),
		Overridden: c.IsOverridden(t.Identifier),
	}
}

func writeCoordinatorError(w http.ResponseWriter, deps Deps, err error) {
	switch {
	case errors.Is(err, coordinator.ErrNoMutableSource):
		httpError(w, http.StatusConflict, "no_mutable_source", "%s", deps.Messages.NoMutableSources())
	case errors.Is(err, coordinator.ErrReadOnly):
		httpError(w, http.StatusForbidden, "read_only", "%v", err)
	case errors.Is(err, coordinator.ErrKindMismatch), errors.Is(err, tweak.ErrInvalidValue):
		httpError(w, http.StatusUnprocessableEntity, "invalid_value", "%v", err)
	default:
		deps.Log.Error("write failed", zap.Error(err))
		httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
