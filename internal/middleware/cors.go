package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS wraps h so that browsers on any origin may call the API.
// Credentials are allowed, so the allowed origin is echoed back rather than "*".
func CORS(h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
}
