package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers the health check and the play endpoint.
func NewRouter(ws *WSHandler, allowedOrigins []string, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware(allowedOrigins))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/quizzes/{quizId:[0-9]+}/play", ws.ServeWS).Methods(http.MethodGet)
	if logger != nil {
		logger.Info("routes registered", "routes", []string{"/healthz", "/quizzes/{quizId}/play"})
	}
	return router
}

// corsMiddleware sets the CORS headers for the browser play surface.
func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowedOrigins, origin) {
				if len(allowedOrigins) == 0 {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}
