package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-atlas/locality-cli/internal/export"
	"github.com/kerala-atlas/locality-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rankings and locality data over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, cfg.Server.AllowedOrigins, cfg.Scoring.Preset),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API routes. defaultPreset names the report
// returned when the request carries no ?preset= parameter.
func newRouter(st store.Store, allowedOrigins []string, defaultPreset string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/rankings", func(w http.ResponseWriter, req *http.Request) {
		preset := req.URL.Query().Get("preset")
		if preset == "" {
			preset = defaultPreset
		}

		report, err := st.LatestReport(req.Context(), preset)
		if err != nil {
			zap.L().Error("latest report failed", zap.String("preset", preset), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if report == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report for preset " + preset})
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Get("/api/localities", func(w http.ResponseWriter, req *http.Request) {
		localities, err := st.ListLocalities(req.Context())
		if err != nil {
			zap.L().Error("list localities failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, localities)
	})

	r.Get("/api/localities.geojson", func(w http.ResponseWriter, req *http.Request) {
		preset := req.URL.Query().Get("preset")
		if preset == "" {
			preset = defaultPreset
		}

		localities, err := st.ListLocalities(req.Context())
		if err != nil {
			zap.L().Error("list localities failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		report, err := st.LatestReport(req.Context(), preset)
		if err != nil {
			zap.L().Error("latest report failed", zap.String("preset", preset), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if report == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report for preset " + preset})
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		if err := export.GeoJSON(w, report, localities); err != nil {
			zap.L().Error("geojson export failed", zap.Error(err))
		}
	})

	r.Get("/api/localities/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		rec, err := st.GetLocality(req.Context(), name)
		if err != nil {
			zap.L().Error("get locality failed", zap.String("name", name), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if rec == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "locality not found"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
