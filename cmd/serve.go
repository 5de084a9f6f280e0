package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/assess"
	"github.com/prostaff-av/riskdash/internal/catalog"
	"github.com/prostaff-av/riskdash/internal/daterange"
	"github.com/prostaff-av/riskdash/internal/pipeline"
	"github.com/prostaff-av/riskdash/internal/scoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		var saver *assess.Service
		if e.Client != nil {
			saver = assess.NewService(e.Client)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(e, saver, time.Now),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(e *env, saver *assess.Service, now func() time.Time) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/factors", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"factors":           catalog.Factors(),
			"total_weight":      catalog.TotalWeight(),
			"default_selection": catalog.DefaultSelection(),
		})
	})

	r.Get("/api/opportunities", func(w http.ResponseWriter, req *http.Request) {
		filters, err := parseFilters(req, now())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := e.Board.View(req.Context(), filters)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})

	r.Post("/api/score", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Selection scoring.Selection `json:"selection"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		a, err := scoring.Compute(body.Selection)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	})

	r.Post("/api/opportunities/{id}/assessment", func(w http.ResponseWriter, req *http.Request) {
		if saver == nil {
			writeError(w, http.StatusServiceUnavailable, eris.New("assessment save requires Current RMS credentials"))
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, eris.New("invalid opportunity id"))
			return
		}
		var in assess.Input
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		a, err := saver.Save(req.Context(), id, in)
		if err != nil {
			if eris.Is(err, scoring.ErrInvalidSelection) {
				writeError(w, http.StatusUnprocessableEntity, err)
				return
			}
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	})

	return r
}

// parseFilters builds pipeline filters from query parameters. The date
// window defaults to the next 30 days.
func parseFilters(req *http.Request, today time.Time) (pipeline.Filters, error) {
	q := req.URL.Query()

	selector := q.Get("range")
	if selector == "" {
		selector = daterange.SelectorNext30
	}
	var customStart, customEnd *time.Time
	if s := q.Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return pipeline.Filters{}, eris.Errorf("invalid start date %q", s)
		}
		customStart = &t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return pipeline.Filters{}, eris.Errorf("invalid end date %q", s)
		}
		customEnd = &t
	}

	window, err := daterange.Resolve(selector, today, customStart, customEnd)
	if err != nil {
		return pipeline.Filters{}, err
	}
	review, err := pipeline.ParseReviewFilter(q.Get("review"))
	if err != nil {
		return pipeline.Filters{}, err
	}
	mitigation, err := pipeline.ParseMitigationFilter(q.Get("mitigation"))
	if err != nil {
		return pipeline.Filters{}, err
	}

	return pipeline.Filters{
		Window:            window,
		Review:            review,
		Mitigation:        mitigation,
		NeedsReassessment: q.Get("needs_reassessment") == "true",
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
