// Package httpapi holds the pieces every REST service shares: JSON replies,
// the health route, CORS wrapping and the listen loop.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Lavizord/gridbattle/internal/logger"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Utility function to respond with JSON
func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Default.Warnf("[httpapi] - failed to encode response: %v", err)
	}
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, ErrorResponse{Error: message})
}

// NewRouter returns a mux router with the health route already mounted.
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	return router
}

// WithCors wraps h so browser clients on allowedOrigins can call it. An empty
// list allows every origin.
func WithCors(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

// ListenAndServe runs h on port until ctx is cancelled, then shuts down.
func ListenAndServe(ctx context.Context, name string, port int, h http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Default.Infof("[%s] - server started on %s", name, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Default.Infof("[%s] - shutting down", name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
