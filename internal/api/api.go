// Package api exposes dependency resolution as an HTTP service.
//
// Routes:
//
//	POST /api/resolve          resolve a dep list, archive and return it
//	GET  /api/resolutions      list recent resolutions
//	GET  /api/resolutions/{id} fetch an archived resolution
//	GET  /healthz              liveness probe
//
// Responses for identical requests are served from the configured cache,
// so a fleet of instances sharing Redis resolves each request once.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stackmesa/depstack/pkg/cache"
	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/depsfile"
	"github.com/stackmesa/depstack/pkg/errors"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/resolve"
	"github.com/stackmesa/depstack/pkg/store"
)

// resultTTL bounds how long cached resolution responses stay fresh.
const resultTTL = time.Hour

// Server handles resolution requests.
type Server struct {
	registry *provider.Registry
	cfg      provider.Config
	store    store.Store
	cache    cache.Cache
	logger   *log.Logger
}

// NewServer creates a server. A nil cache disables response caching; a
// nil store keeps archived resolutions in process memory.
func NewServer(registry *provider.Registry, cfg provider.Config, st store.Store, c cache.Cache, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	return &Server{registry: registry, cfg: cfg, store: st, cache: c, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Get("/resolutions", s.handleList)
		r.Get("/resolutions/{id}", s.handleGet)
	})
	return r
}

// depEntry is one top-level dep in a request; an array keeps the
// top-dep order the conflict rules depend on.
type depEntry struct {
	Lib   string      `json:"lib"`
	Coord coord.Coord `json:"coord"`
}

type resolveRequest struct {
	Deps         []depEntry             `json:"deps"`
	OverrideDeps map[string]coord.Coord `json:"override_deps,omitempty"`
	DefaultDeps  map[string]coord.Coord `json:"default_deps,omitempty"`
	Threads      int                    `json:"threads,omitempty"`
	Trace        bool                   `json:"trace,omitempty"`
}

type resolveResponse struct {
	ID    string          `json:"id"`
	Libs  *resolve.LibMap `json:"libs"`
	Trace *resolve.Trace  `json:"trace,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeConfig, err, "read request"))
		return
	}

	var req resolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeConfig, err, "decode request"))
		return
	}

	// Identical requests share one resolution across instances.
	key := "resolve:" + cache.Hash(body)
	if cached, hit, _ := s.cache.Get(r.Context(), key); hit {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(cached)
		return
	}

	deps := make([]coord.Dep, 0, len(req.Deps))
	for _, e := range req.Deps {
		lib, err := coord.ParseLib(e.Lib)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeConfig, err, "bad lib %q", e.Lib))
			return
		}
		deps = append(deps, coord.Dep{Lib: lib, Coord: depsfile.InferType(e.Coord)})
	}

	opts := resolve.Options{
		Threads: req.Threads,
		Trace:   req.Trace,
		Logger:  s.logger,
	}
	if opts.OverrideDeps, err = parseLibMap(req.OverrideDeps); err != nil {
		s.writeError(w, err)
		return
	}
	if opts.DefaultDeps, err = parseLibMap(req.DefaultDeps); err != nil {
		s.writeError(w, err)
		return
	}

	lm, err := resolve.Deps(r.Context(), s.registry, deps, s.cfg, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	libsJSON, err := json.Marshal(lm)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var traceJSON json.RawMessage
	if lm.Trace != nil {
		traceJSON, _ = json.Marshal(lm.Trace)
	}

	res := store.New(body, libsJSON, traceJSON)
	if err := s.store.Put(r.Context(), res); err != nil {
		s.logger.Error("archive resolution", "id", res.ID, "err", err)
	}

	resp := resolveResponse{ID: res.ID, Libs: lm, Trace: lm.Trace}
	encoded, err := json.Marshal(resp)
	if err != nil {
		s.writeError(w, err)
		return
	}
	_ = s.cache.Set(r.Context(), key, encoded, resultTTL)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(encoded)
}

func parseLibMap(in map[string]coord.Coord) (map[coord.Lib]coord.Coord, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[coord.Lib]coord.Coord, len(in))
	for name, c := range in {
		lib, err := coord.ParseLib(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "bad lib %q", name)
		}
		out[lib] = depsfile.InferType(c)
	}
	return out, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	rs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeConfig, errors.ErrCodeAlias, errors.ErrCodeInvalidCoord:
		status = http.StatusBadRequest
	case errors.ErrCodeProvider, errors.ErrCodeIncomparable:
		status = http.StatusUnprocessableEntity
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.writeJSON(w, status, errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
