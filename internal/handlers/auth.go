// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"polycms/internal/middleware"
	"polycms/internal/models"
	"polycms/internal/session"
	"polycms/internal/store"
	"polycms/internal/token"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "polycms"

// Auth groups the authentication HTTP handlers. Login exchanges
// credentials (plus a TOTP code once 2FA is enrolled) for a short-lived
// JWT access token and an opaque refresh token held in Valkey.
type Auth struct {
	users    *store.UserStore
	sessions *session.Store
	tokens   *token.Manager
}

// NewAuth creates a new Auth handler group.
func NewAuth(users *store.UserStore, sessions *session.Store, tokens *token.Manager) *Auth {
	return &Auth{users: users, sessions: sessions, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// tokenResponse is the payload returned by Login and Refresh.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         *models.User `json:"user"`
}

// Login verifies credentials and issues tokens. Users with 2FA enrolled
// must supply a valid TOTP code in the same request.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			// Distinct message so clients know to prompt for the code.
			respondError(w, http.StatusUnauthorized, "totp code required")
			return
		}
		if user.TOTPSecret == nil || !totp.Validate(req.TOTPCode, *user.TOTPSecret) {
			respondError(w, http.StatusUnauthorized, "invalid totp code")
			return
		}
	}

	resp, err := a.issueTokens(r, user)
	if err != nil {
		slog.Error("issue tokens failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	respondJSON(w, http.StatusOK, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token and issues a fresh access token. The
// old refresh token is revoked; the user's current role is re-read so a
// role change takes effect on the next refresh.
func (a *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fresh, data, err := a.sessions.Rotate(r.Context(), req.RefreshToken)
	if err != nil {
		slog.Error("refresh rotate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if data == nil {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := a.users.FindByID(data.UserID)
	if err != nil {
		slog.Error("refresh lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		// Account deleted since login; drop the rotated session too.
		a.sessions.Revoke(r.Context(), fresh)
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, err := a.tokens.Issue(user)
	if err != nil {
		slog.Error("issue access token failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: fresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(a.tokens.TTL() / time.Second),
		User:         user,
	})
}

// Logout revokes the refresh token. The access token simply expires.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := a.sessions.Revoke(r.Context(), req.RefreshToken); err != nil {
		slog.Error("logout revoke failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's current record.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := a.users.FindByID(claims.UserID)
	if err != nil {
		slog.Error("me lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// twoFASetupResponse carries everything an authenticator app needs: the
// raw secret, the otpauth URL, and a QR code as base64 PNG.
type twoFASetupResponse struct {
	Secret    string `json:"secret"`
	URL       string `json:"url"`
	QRCodePNG string `json:"qr_code_png"` // base64-encoded
}

// TwoFASetup generates a fresh TOTP secret for the authenticated user.
// The secret stays unconfirmed until TwoFAVerify succeeds.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: claims.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.users.SetTOTPSecret(claims.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, twoFASetupResponse{
		Secret:    key.Secret(),
		URL:       key.URL(),
		QRCodePNG: base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates a TOTP code against the stored secret and, on the
// first successful check, marks 2FA as enrolled.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req twoFAVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.FindByID(claims.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "2fa setup has not been started")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid totp code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	slog.Info("2fa enrolled", "user_id", user.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": true})
}

// issueTokens creates the refresh session and signs an access token.
func (a *Auth) issueTokens(r *http.Request, user *models.User) (*tokenResponse, error) {
	refresh, err := a.sessions.Create(r.Context(), &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	access, err := a.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(a.tokens.TTL() / time.Second),
		User:         user,
	}, nil
}
