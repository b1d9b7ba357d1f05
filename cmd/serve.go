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

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/pipeline"
	"github.com/sells-group/epv-cli/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve EPV analyses over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := resolvePort(servePort, cfg.Server.Port)
		cfg.Server.Port = port

		env, err := initPipeline(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		return startServer(ctx, buildMux(env.Pipeline, cfg.Valuation.DiscountRate), port)
	},
}

// resolvePort prefers the flag over the configured port.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// buildMux wires the HTTP routes. Each request runs one independent
// analysis; nothing is kept between requests.
func buildMux(a analyzer, defaultRate float64) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /analyze/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		format, err := report.ParseFormat(q.Get("format"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		req := pipeline.Request{Ticker: r.PathValue("ticker"), DiscountRate: defaultRate}
		if s := q.Get("rate"); s != "" {
			if req.DiscountRate, err = strconv.ParseFloat(s, 64); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rate must be a number"})
				return
			}
		}
		if req.Overrides.MaintenanceSGA, err = parseOptionalFloat(q.Get("maint_sga")); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "maint_sga must be a number"})
			return
		}
		if req.Overrides.MaintenanceRND, err = parseOptionalFloat(q.Get("maint_rnd")); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "maint_rnd must be a number"})
			return
		}

		result, err := a.Run(r.Context(), req)
		if err != nil {
			status := http.StatusInternalServerError
			if eris.Is(err, pipeline.ErrInvalidTicker) || eris.Is(err, pipeline.ErrInvalidRequest) {
				status = http.StatusBadRequest
			}
			zap.L().Warn("serve: analysis failed", zap.String("ticker", req.Ticker), zap.Error(err))
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		if err := report.Render(w, format, result); err != nil {
			zap.L().Warn("serve: write report failed", zap.String("ticker", result.Ticker), zap.Error(err))
		}
	})

	return mux
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// startServer serves until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
