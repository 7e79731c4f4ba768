// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"postforge/internal/middleware"
	"postforge/internal/session"
)

// Login authenticates an operator and opens a session. Unknown email and
// wrong password both answer 401 with the same message.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respondErr(w, &ValidationError{Msg: "Email and password are required"})
		return
	}

	u, err := a.users.Authenticate(email, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	if u == nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}); err != nil {
		respondErr(w, err)
		return
	}

	slog.Info("operator logged in", "user", u.ID, "email", u.Email)
	respond(w, http.StatusOK, map[string]any{"user": u})
}

// Logout destroys the session. Safe to call without one.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the current session's identity plus the CSRF token the client
// must echo back on mutating requests.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":           sess.UserID,
			"email":        sess.Email,
			"display_name": sess.DisplayName,
			"role":         sess.Role,
		},
		"csrf_token": middleware.CSRFTokenFromCtx(r.Context()),
	})
}
