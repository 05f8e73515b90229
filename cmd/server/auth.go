package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Simplici0/fabquote/internal/auth"
)

const sessionCookieName = "fabquote_session"

type ownerKey struct{}

type authService struct {
	db     *sql.DB
	signer *auth.Signer
}

func newAuthService(db *sql.DB, sessionSecret string) *authService {
	return &authService{db: db, signer: auth.NewSigner(sessionSecret)}
}

func (a *authService) validateCredentials(ctx context.Context, email, password string) (bool, error) {
	var passwordHash string
	err := a.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user credentials: %w", err)
	}
	return auth.CheckPassword(passwordHash, password), nil
}

func (a *authService) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// owner returns the email a request is authenticated as. A bearer token
// takes precedence over the cookie.
func (a *authService) owner(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return "", false
		}
		return a.signer.Verify(strings.TrimSpace(token))
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return a.signer.Verify(cookie.Value)
}

func (a *authService) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := a.owner(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, email)))
	})
}

func ownerFrom(ctx context.Context) string {
	email, _ := ctx.Value(ownerKey{}).(string)
	return email
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	valid, err := s.auth.validateCredentials(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		s.log.Error("auth: credential check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "authentication error"})
		return
	}
	if !valid {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}

	token, err := s.auth.signer.Token(strings.TrimSpace(req.Email))
	if err != nil {
		s.log.Error("auth: token signing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "authentication error"})
		return
	}
	s.auth.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
