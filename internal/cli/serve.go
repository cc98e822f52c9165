package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/pipeline"
	"github.com/schemtools/spicenet/pkg/store"
)

// serveCommand creates the serve command exposing the netlister over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		file    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve netlists over HTTP",
		Long: `Serve netlists over HTTP.

Endpoints:

  GET /api/models                   list library models (?filter=, ?category=a,b)
  GET /api/schematic/{name}         resolved schematic closure as JSON
  GET /api/netlist/{name}           extracted nets as JSON
  GET /api/spice/{name}             SPICE deck as text (?corner=, ?simulator=)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.newStore(ctx, file)
			if err != nil {
				return err
			}
			cch, err := c.newCache(noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(st, cch, nil, c.Logger)
			defer runner.Close(ctx)

			api := &apiServer{runner: runner, store: st, logger: c.Logger}
			srv := &http.Server{
				Addr:         addr,
				Handler:      api.routes(),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return ctx.Err()
			case err := <-errCh:
				if err == http.ErrServerClosed {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&file, "file", "F", "", "serve from a local JSON schematic file instead of the store")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache")

	return cmd
}

// apiServer holds the dependencies of the HTTP API handlers.
type apiServer struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", s.handleModels)
		r.Get("/schematic/{name}", s.handleSchematic)
		r.Get("/netlist/{name}", s.handleNetlist)
		r.Get("/spice/{name}", s.handleSpice)
	})
	return r
}

func (s *apiServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *apiServer) handleModels(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	var category []string
	if raw := r.URL.Query().Get("category"); raw != "" {
		category = strings.Split(raw, ",")
	}
	models, err := s.store.Library(r.Context(), filter, category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, models)
}

func (s *apiServer) handleSchematic(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{Schematic: chi.URLParam(r, "name"), Logger: s.logger}
	schem, err := s.runner.Resolve(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, schem)
}

func (s *apiServer) handleNetlist(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{Schematic: chi.URLParam(r, "name"), Logger: s.logger}
	nets, err := s.runner.Nets(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, nets)
}

func (s *apiServer) handleSpice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Schematic: chi.URLParam(r, "name"),
		Corner:    q.Get("corner"),
		Simulator: q.Get("simulator"),
		Refresh:   q.Get("refresh") == "true",
		Logger:    s.logger,
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(res.Spice.Text))
}

func (s *apiServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeModelNotFound,
		errors.ErrCodeSchematicNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName,
		errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidModel:
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"code":  string(errors.GetCode(err)),
	})
}
