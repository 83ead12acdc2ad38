package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/client"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Login")
	if r.URL.Query().Get("registered") != "" {
		data.Success = "Registration successful. Please log in."
	}
	s.Templates.Render(w, "login.html", &data)
}

// LoginSubmit handles POST /login. The session returned by the API is stored
// in cookies.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	session, err := s.API.Login(r.Context(), email, password)
	if err != nil {
		logAPIError(r, "login", err)
		data := s.page(r, "Login")
		data.Error = "Login failed. Please check your credentials."
		s.Templates.Render(w, "login.html", &data)
		return
	}

	setSessionCookies(w, session)
	if session.IsAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Register")
	s.Templates.Render(w, "register.html", &data)
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if err := s.API.Register(r.Context(), email, password); err != nil {
		logAPIError(r, "register", err)
		data := s.page(r, "Register")
		data.Error = "Registration failed. Please try again."
		s.Templates.Render(w, "register.html", &data)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout handles POST /logout. It destroys the client session.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookies(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logAPIError logs API failures. Client errors are expected and logged at
// debug; anything else is a warning.
func logAPIError(r *http.Request, op string, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		slog.DebugContext(r.Context(), "api rejected request", "op", op, "status", apiErr.Status, "error", apiErr.Message)
		return
	}
	slog.WarnContext(r.Context(), "api request failed", "op", op, "error", err)
}
