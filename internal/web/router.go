package web

import (
	"net/http"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/client"
	webembed "github.com/ShinobiWonKnobi/LostAndFound-Official/web"
)

// NewRouter creates the web page router. Pages get their data from the REST
// API through api.
func NewRouter(api *client.Client) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		API:       api,
		Templates: templates,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public pages.
	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Signed-in users.
	mux.Handle("GET /report-lost-item", requireSession(http.HandlerFunc(s.ReportPage)))
	mux.Handle("POST /report-lost-item", requireSession(http.HandlerFunc(s.ReportSubmit)))

	// Admins.
	mux.Handle("GET /admin", requireAdmin(http.HandlerFunc(s.AdminPage)))
	mux.Handle("POST /admin/items/{id}/status", requireAdmin(http.HandlerFunc(s.AdminStatusSubmit)))
	mux.Handle("POST /admin/items/{id}/delete", requireAdmin(http.HandlerFunc(s.AdminDeleteSubmit)))

	return SessionMiddleware(mux), nil
}
