package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/client"
)

type webContextKey string

const webSessionKey webContextKey = "websession"

// Cookie names holding the client session.
const (
	tokenCookie   = "token"
	isAdminCookie = "isAdmin"
)

// SessionMiddleware rehydrates the client session from its cookies and adds
// it to the context. Requests without cookies get a signed-out session.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s client.Session
		if c, err := r.Cookie(tokenCookie); err == nil {
			s.Token = c.Value
		}
		if c, err := r.Cookie(isAdminCookie); err == nil && s.Token != "" {
			s.IsAdmin, _ = strconv.ParseBool(c.Value)
		}

		ctx := context.WithValue(r.Context(), webSessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession retrieves the client session from the web context.
func GetSession(ctx context.Context) client.Session {
	s, _ := ctx.Value(webSessionKey).(client.Session)
	return s
}

// requireSession redirects signed-out visitors to the login page.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetSession(r.Context()).LoggedIn() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin redirects visitors without an admin session to the login page.
// The API still checks the token itself.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r.Context())
		if !s.LoggedIn() || !s.IsAdmin {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setSessionCookies persists s in the browser.
func setSessionCookies(w http.ResponseWriter, s client.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     isAdminCookie,
		Value:    strconv.FormatBool(s.IsAdmin),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies clears the session cookies with consistent attributes.
func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{tokenCookie, isAdminCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
