package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/portal"
)

// Deps holds what the API handlers share.
type Deps struct {
	DB      *sql.DB
	Issuer  *auth.Issuer
	Limiter *auth.LoginLimiter
	Portal  *portal.Service
	Images  portal.ImageStore

	// MaxImageBytes caps uploaded images. Zero means imaging.MaxUploadBytes.
	MaxImageBytes int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, Issuer: d.Issuer, Limiter: d.Limiter}
	usersHandler := &UsersHandler{DB: d.DB}
	itemsHandler := &ItemsHandler{DB: d.DB, Portal: d.Portal, MaxUploadBytes: d.MaxImageBytes}
	imagesHandler := &ImagesHandler{DB: d.DB, Images: d.Images, MaxUploadBytes: d.MaxImageBytes}
	adminHandler := &AdminHandler{DB: d.DB}

	authMW := AuthMiddleware(d.Issuer, d.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items: search and submit (staff+), moderation (admin).
	mux.Handle("GET /api/items", authMW(requireStaff(http.HandlerFunc(itemsHandler.List))))
	mux.Handle("POST /api/items", authMW(requireStaff(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(requireStaff(http.HandlerFunc(itemsHandler.Get))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("POST /api/items/{id}/verify", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Verify))))
	mux.Handle("POST /api/items/{id}/retrieved", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Retrieved))))

	// Images.
	mux.Handle("POST /api/images", authMW(requireStaff(http.HandlerFunc(imagesHandler.Upload))))
	mux.Handle("GET /api/images/{id}", authMW(http.HandlerFunc(imagesHandler.Get)))

	// Admin panel data.
	mux.Handle("GET /api/metrics", authMW(requireAdmin(http.HandlerFunc(adminHandler.Metrics))))
	mux.Handle("GET /api/matches", authMW(requireAdmin(http.HandlerFunc(adminHandler.Matches))))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return mux
}
