// Package server exposes the reports over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/messwatch/internal/report"
)

// Reporter produces report envelopes. *report.Runner implements it.
type Reporter interface {
	Daily(ctx context.Context, date string) (*report.Envelope, error)
	Weekly(ctx context.Context, date string) (*report.Envelope, error)
	Historical(ctx context.Context, start, end, analysisType string) (*report.Envelope, error)
}

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	Log            logrus.FieldLogger

	// Now stamps error envelopes; time.Now when nil.
	Now func() time.Time
}

// Server serves report envelopes as JSON.
type Server struct {
	reports Reporter
	opts    Options
}

// New returns a server backed by reports.
func New(reports Reporter, opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{reports: reports, opts: opts}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/daily/{date}", s.daily)
		r.Get("/weekly/{date}", s.weekly)
		r.Get("/historical", s.historical)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Log.WithField("addr", s.opts.Addr).Info("serving reports")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) daily(w http.ResponseWriter, r *http.Request) {
	env, err := s.reports.Daily(r.Context(), chi.URLParam(r, "date"))
	s.respond(w, env, err)
}

func (s *Server) weekly(w http.ResponseWriter, r *http.Request) {
	env, err := s.reports.Weekly(r.Context(), chi.URLParam(r, "date"))
	s.respond(w, env, err)
}

func (s *Server) historical(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" || end == "" {
		s.respond(w, nil, report.Errorf(report.CodeUsage, nil, "start and end query parameters are required"))
		return
	}
	env, err := s.reports.Historical(r.Context(), start, end, q.Get("type"))
	s.respond(w, env, err)
}

// respond writes the envelope the CLI would print, with a status derived
// from the error code.
func (s *Server) respond(w http.ResponseWriter, env *report.Envelope, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusFor(report.AsError(err).Code)
	} else if env == nil {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, report.Render(env, err, s.opts.Now()))
}

func statusFor(code report.Code) int {
	switch code {
	case report.CodeInvalidDate, report.CodeInvalidArgs, report.CodeUsage:
		return http.StatusBadRequest
	case report.CodeDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// requestLogger logs one line per request through logrus.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"elapsed":    time.Since(start).String(),
			}).Info("request")
		})
	}
}
