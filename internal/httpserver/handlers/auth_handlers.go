package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"corpsite/internal/auth"
	"corpsite/internal/service"
)

type signupReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=4"`
}

func Signup(accounts *service.Accounts, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "username and password are required")
			return
		}
		u, err := accounts.Signup(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrUsernameTaken) {
				respondError(w, http.StatusConflict, "username already exists")
				return
			}
			lg.Errorw("signup failed", "username", req.Username, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{
			"message": "signup complete",
			"user":    map[string]any{"id": u.ID, "username": u.Username},
		})
	}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(accounts *service.Accounts, tokens auth.Tokens, secureCookie bool, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "username and password are required")
			return
		}
		u, err := accounts.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			var cerr *service.CredentialsError
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				respondError(w, http.StatusUnauthorized, "user not found")
			case errors.Is(err, service.ErrAccountDisabled):
				respondError(w, http.StatusUnauthorized, "account is disabled, contact an administrator")
			case errors.Is(err, service.ErrAlreadyLoggedIn):
				respondError(w, http.StatusUnauthorized, "already logged in on another device")
			case errors.As(err, &cerr):
				if cerr.Locked {
					respondError(w, http.StatusUnauthorized, fmt.Sprintf("account disabled after %d failed login attempts", service.MaxFailedLogins))
					return
				}
				respondJSON(w, http.StatusUnauthorized, map[string]any{
					"message":           "invalid username or password",
					"remainingAttempts": cerr.RemainingAttempts,
				})
			default:
				lg.Errorw("login failed", "username", req.Username, "error", err)
				respondError(w, http.StatusInternalServerError, "server error")
			}
			return
		}
		tok, err := tokens.Issue(u.ID, u.Username)
		if err != nil {
			// No cookie reaches the caller, so logout could never clear
			// the session flag; release it before failing.
			if lerr := accounts.Logout(r.Context(), u.Username); lerr != nil {
				lg.Errorw("session flag release failed", "username", u.Username, "error", lerr)
			}
			if errors.Is(err, auth.ErrNoSigningKey) {
				lg.Errorw("jwt secret not configured")
				respondError(w, http.StatusInternalServerError, "server configuration error")
				return
			}
			lg.Errorw("token issue failed", "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		http.SetCookie(w, sessionCookie(tok, int(tokens.TTL.Seconds()), secureCookie))
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "login successful",
			"user":    u,
		})
	}
}

func Logout(accounts *service.Accounts, tokens auth.Tokens, secureCookie bool, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := auth.TokenFromRequest(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "no token present")
			return
		}
		// Best effort: clear the session flag when the token still resolves,
		// expire the cookie regardless.
		if claims, err := tokens.Verify(raw); err == nil {
			if err := accounts.Logout(r.Context(), claims.Username); err != nil {
				lg.Warnw("logout update failed", "username", claims.Username, "error", err)
			}
		}
		c := sessionCookie("", -1, secureCookie)
		http.SetCookie(w, c)
		respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// VerifyToken checks the cookie itself so the failure body can carry
// isValid=false instead of the middleware's generic rejection.
func VerifyToken(tokens auth.Tokens, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := auth.TokenFromRequest(r)
		if !ok {
			respondJSON(w, http.StatusUnauthorized, map[string]any{"isValid": false})
			return
		}
		claims, err := tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrNoSigningKey) {
				lg.Errorw("jwt secret not configured")
				respondError(w, http.StatusInternalServerError, "server configuration error")
				return
			}
			respondJSON(w, http.StatusUnauthorized, map[string]any{"isValid": false})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"isValid": true,
			"user":    map[string]any{"userId": claims.UserID, "username": claims.Username},
		})
	}
}

func DeleteUser(accounts *service.Accounts, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		if err := accounts.Delete(r.Context(), uint(id)); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			lg.Errorw("delete user failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
	}
}

func sessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
