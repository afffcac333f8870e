package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rodologic/backend/internal/auth"
	"github.com/rodologic/backend/internal/config"
	"github.com/rodologic/backend/internal/dedupe"
	"github.com/rodologic/backend/internal/importer"
	"github.com/rodologic/backend/internal/logger"
	"github.com/rodologic/backend/internal/recalc"
	"github.com/rodologic/backend/internal/store"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	st, err := store.New(cfg.DatabaseDSN, log)
	if err != nil {
		log.Error("init store", slog.Any("err", err))
		os.Exit(1)
	}
	if err := st.Migrate(); err != nil {
		log.Error("migrate store", slog.Any("err", err))
		os.Exit(1)
	}

	publisher := recalc.NewPublisher(cfg.KafkaBrokers, cfg.RecalcTopic, log)
	defer publisher.Close()

	recent := dedupe.New(cfg.DedupeCapacity, cfg.DedupeTTL)
	imp := importer.New(st, publisher, recent, log)

	srv := &server{
		log:      log,
		store:    st,
		importer: imp,
		auth:     auth.NewStoreVerifier(st.DB()),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Post("/cte/import", srv.handleImport)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log      *slog.Logger
	store    *store.Store
	importer *importer.Importer
	auth     auth.Verifier
}

type importRequest struct {
	XMLs []string `json:"xmls"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	principal, err := s.auth.Verify(ctx, bearerToken(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error("verify credential", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "falha na autenticação"})
		return
	}

	var body importRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "corpo da requisição inválido"})
		return
	}

	report, err := s.importer.Run(ctx, body.XMLs, principal)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyBatch) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error("import batch", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "falha ao processar o lote"})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
