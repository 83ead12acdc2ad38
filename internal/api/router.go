package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/upload"
)

// EventPublisher publishes domain events such as item.found.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Options configures the API router.
type Options struct {
	JWTSecret   string
	TokenExpiry time.Duration // 0: tokens carry no exp claim
	Uploads     *upload.Sink
	Events      EventPublisher
	CORSOrigins []string
}

// NewRouter creates the API router with all endpoints registered. It serves
// /api/, /uploads/ and /healthz.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, TokenExpiry: opts.TokenExpiry}
	itemsHandler := &ItemsHandler{DB: db, Uploads: opts.Uploads, Events: opts.Events}

	authMW := AuthMiddleware(opts.JWTSecret)

	// Public: accounts.
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/login", authHandler.Login)

	// Public: lost items.
	mux.HandleFunc("GET /api/items", itemsHandler.ListLost)
	mux.HandleFunc("GET /api/search", itemsHandler.Search)

	// Any signed-in user may report an item.
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))

	// Admin only.
	mux.Handle("GET /api/admin/items", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.ListAll))))
	mux.Handle("PUT /api/admin/items/{id}", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/admin/items/{id}", authMW(RequireAdmin(http.HandlerFunc(itemsHandler.Delete))))

	// Uploaded photos, served verbatim.
	if opts.Uploads != nil {
		mux.Handle("GET "+upload.URLPrefix, opts.Uploads.Handler())
	}

	mux.HandleFunc("GET /healthz", healthHandler(db))

	return CORSMiddleware(opts.CORSOrigins)(mux)
}

// CORSMiddleware allows cross-origin calls from the given origins.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			serverError(w, r, "database unavailable", err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
