package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/logging"
)

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	User      auth.User `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleLogin signs a user in by email, creating the account on first use.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, r, &buyer.StructuralInputError{Reason: "malformed JSON", Err: err})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !buyer.ValidEmail(email) {
		s.respondError(w, r, &buyer.FieldValidationError{
			Errors: []buyer.FieldError{{Field: "email", Message: buyer.MsgInvalidEmail}},
		})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = auth.NameFromEmail(email)
	}

	user, err := s.deps.Users.UpsertUser(r.Context(), email, name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	token, expires, err := s.deps.Tokens.Issue(user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.deps.Tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	logging.WithFields(r.Context(), "user_id", user.ID).Info("user signed in")
	writeJSON(w, r, http.StatusOK, loginResponse{User: user, ExpiresAt: expires})
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, u)
}
