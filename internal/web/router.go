package web

import (
	"net/http"

	webembed "github.com/erazemk/lostfound/web"
)

// NewRouter creates the web page router with all page routes registered.
// s.Templates is loaded if nil.
func NewRouter(s *Server) (http.Handler, error) {
	if s.Templates == nil {
		templates, err := LoadTemplates()
		if err != nil {
			return nil, err
		}
		s.Templates = templates
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(s.Issuer, s.DB)
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(AdminOnly(h)) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Home)))

	mux.Handle("GET /lost/new", cookieAuth(http.HandlerFunc(s.LostForm)))
	mux.Handle("POST /lost", cookieAuth(http.HandlerFunc(s.LostSubmit)))
	mux.Handle("GET /found/new", cookieAuth(http.HandlerFunc(s.FoundForm)))
	mux.Handle("POST /found", cookieAuth(http.HandlerFunc(s.FoundSubmit)))

	mux.Handle("GET /items", cookieAuth(http.HandlerFunc(s.ItemsPage)))
	mux.Handle("GET /items/{id}", cookieAuth(http.HandlerFunc(s.ItemDetailPage)))
	mux.Handle("GET /images/{id}", cookieAuth(http.HandlerFunc(s.ImageGet)))

	mux.Handle("GET /admin", admin(s.AdminPage))
	mux.Handle("POST /admin/items/{id}/verify", admin(s.AdminVerify))
	mux.Handle("POST /admin/items/{id}/retrieved", admin(s.AdminRetrieved))
	mux.Handle("POST /admin/items/{id}/delete", admin(s.AdminDelete))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users", admin(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}/password", admin(s.UserResetPasswordSubmit))
	mux.Handle("POST /users/{id}/role", admin(s.UserUpdateRoleSubmit))
	mux.Handle("POST /users/{id}/delete", admin(s.UserDeleteSubmit))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))

	return mux, nil
}
