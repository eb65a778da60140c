package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// userMessages are the banners shown after a user management action.
var userMessages = map[string]string{
	"created":    "User created.",
	"reset":      "Password reset.",
	"role":       "Role updated.",
	"deleted":    "User deleted.",
	"invalid":    "Fill in every field. Passwords need at least 8 characters.",
	"exists":     "That username is already taken.",
	"last_admin": "The last administrator cannot be removed or demoted.",
	"self":       "You cannot delete your own account.",
}

// UsersPage handles GET /users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	pd := page(r, "Users")
	status := http.StatusOK

	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		pd.Error = "Users could not be loaded. Try again later."
		status = http.StatusInternalServerError
	} else {
		if msg := r.URL.Query().Get("ok"); msg != "" {
			pd.Success = userMessages[msg]
		}
		if msg := r.URL.Query().Get("err"); msg != "" {
			pd.Error = userMessages[msg]
		}
	}

	s.Templates.RenderStatus(w, status, "users.html", &struct {
		PageData
		Users []model.User
		Roles []string
	}{
		PageData: pd,
		Users:    users,
		Roles:    []string{model.RoleStaff, model.RoleAdmin},
	})
}

// UserCreateSubmit handles POST /users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	username := r.FormValue("username")
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || !model.ValidRole(role) || model.ValidatePassword(password) != nil {
		http.Redirect(w, r, "/users?err=invalid", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, username, string(hash), role); err != nil {
		slog.Warn("failed to create user", "username", username, "error", err)
		http.Redirect(w, r, "/users?err=exists", http.StatusSeeOther)
		return
	}

	slog.Info("user created", "user", claims.Username, "new_user", username, "role", role)
	http.Redirect(w, r, "/users?ok=created", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	if model.ValidatePassword(newPassword) != nil {
		http.Redirect(w, r, "/users?err=invalid", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, id, string(hash)); err != nil {
		slog.Error("failed to reset password", "error", err)
		http.Error(w, "failed to reset password", http.StatusInternalServerError)
		return
	}

	slog.Info("user password reset", "user", claims.Username, "target_user_id", id)
	http.Redirect(w, r, "/users?ok=reset", http.StatusSeeOther)
}

// UserUpdateRoleSubmit handles POST /users/{id}/role (admin only).
func (s *Server) UserUpdateRoleSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	role := r.FormValue("role")
	if !model.ValidRole(role) {
		http.Redirect(w, r, "/users?err=invalid", http.StatusSeeOther)
		return
	}

	if err := store.UpdateUserRole(r.Context(), s.DB, id, role); err != nil {
		if errors.Is(err, store.ErrLastAdmin) {
			http.Redirect(w, r, "/users?err=last_admin", http.StatusSeeOther)
			return
		}
		slog.Error("failed to update user role", "error", err)
		http.Error(w, "failed to update role", http.StatusInternalServerError)
		return
	}

	slog.Info("user role updated", "user", claims.Username, "target_user_id", id, "new_role", role)
	http.Redirect(w, r, "/users?ok=role", http.StatusSeeOther)
}

// UserDeleteSubmit handles POST /users/{id}/delete (admin only).
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if id == claims.UserID {
		http.Redirect(w, r, "/users?err=self", http.StatusSeeOther)
		return
	}

	if err := store.DeleteUser(r.Context(), s.DB, id); err != nil {
		if errors.Is(err, store.ErrLastAdmin) {
			http.Redirect(w, r, "/users?err=last_admin", http.StatusSeeOther)
			return
		}
		slog.Error("failed to delete user", "error", err)
		http.Error(w, "failed to delete user", http.StatusInternalServerError)
		return
	}

	slog.Info("user deleted", "user", claims.Username, "deleted_user_id", id)
	http.Redirect(w, r, "/users?ok=deleted", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	pd := page(r, "Settings")
	s.Templates.Render(w, "settings.html", &pd)
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	pd := page(r, "Settings")

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	fail := func(msg string) {
		pd.Error = msg
		s.Templates.Render(w, "settings.html", &pd)
	}

	if currentPassword == "" || newPassword == "" {
		fail("Enter your current and new password.")
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		fail("The new password must be at least 8 characters.")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		fail("Could not load your account.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		fail("The current password is incorrect.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		fail("Could not save the password.")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		slog.Error("failed to update password", "error", err)
		fail("Could not update the password.")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	pd.Success = "Password changed."
	s.Templates.Render(w, "settings.html", &pd)
}
