package httpdir

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sghaida/remoteresource/naming"
)

// Option configures the handler returned by NewHandler.
type Option func(*server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *server) {
		if l != nil {
			s.log = l
		}
	}
}

type server struct {
	dir naming.Directory
	log *zap.Logger
}

// NewHandler returns an http.Handler serving dir.
func NewHandler(dir naming.Directory, opts ...Option) http.Handler {
	s := &server{dir: dir, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/context", s.openContext)
		r.Get("/lookup", s.lookup)
	})
	return r
}

func (s *server) openContext(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing query parameter: name"})
		return
	}
	if _, err := s.dir.OpenContext(r.Context(), name); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contextResponse{Context: name})
}

func (s *server) lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctxName, name := q.Get("context"), q.Get("name")
	if ctxName == "" || name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing query parameter: context and name are required"})
		return
	}

	v, err := naming.Resolve(r.Context(), s.dir, ctxName, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := json.Marshal(lookupResponse{Value: v})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var nf *naming.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error(), Context: nf.Context, Name: nf.Name})
		return
	}
	s.log.Warn("directory request failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
