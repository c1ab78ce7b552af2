package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"auto-trader/internal/logger"
	"auto-trader/internal/metrics"
	"auto-trader/internal/state"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// SnapshotSource is what the status endpoint reads. It never mutates.
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

type statusResponse struct {
	Symbol string `json:"symbol"`
	DryRun bool   `json:"dry_run"`
	state.Snapshot
}

// NewRouter wires /healthz, /state and /metrics.
func NewRouter(symbol string, dryRun bool, src SnapshotSource) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery)
	router.Use(logging)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{Symbol: symbol, DryRun: dryRun, Snapshot: src.Snapshot()})
	}).Methods(http.MethodGet)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type Server struct {
	http *http.Server
}

func New(addr string, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Status server listening", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- s.http.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
