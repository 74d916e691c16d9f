package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"qrmenu/internal/middleware"
	"qrmenu/internal/models"
	"qrmenu/internal/session"
)

// totpIssuer names the service in authenticator apps.
const totpIssuer = "QRMenu"

// UserRepository is the part of store.UserStore the handlers use.
type UserRepository interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, username, newPassword string) error
	SetTOTPSecret(ctx context.Context, userID int64, secret string) error
	EnableTOTP(ctx context.Context, userID int64) error
}

// SessionManager issues and revokes admin sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  SessionManager
	userStore UserRepository
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionManager, userStore UserRepository) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

// Login checks the credentials and starts a session. When the admin has
// two-factor authentication enabled, a current TOTP code must be sent too.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := a.userStore.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if user.Requires2FA() {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error":         "Two-factor code required",
				"totp_required": true,
			})
			return
		}
		if !totp.Validate(code, *user.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("admin logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

// Logout destroys the session and expires the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// CheckSession reports whether the request carries a live session.
func (a *Auth) CheckSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      sess.Username,
	})
}

// NewPassword replaces the stored password of a user. Sessions that are
// already open stay valid.
func (a *Auth) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Invalid username or password")
		return
	}

	if err := a.userStore.UpdatePassword(r.Context(), strings.TrimSpace(req.Username), req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("admin password changed", "username", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// TwoFASetup generates a fresh TOTP secret for the logged-in admin and
// returns it with a scannable QR code. 2FA stays disabled until
// TwoFAEnable confirms a code. Re-enrolling switches 2FA off, so when it is
// already on the body must carry a valid {"code"} for the current secret.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if user.Requires2FA() {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error":         "Two-factor code required",
				"totp_required": true,
			})
			return
		}
		if !totp.Validate(code, *user.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Username,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := a.userStore.SetTOTPSecret(r.Context(), sess.UserID, key.Secret()); err != nil {
		respondError(w, r, err)
		return
	}

	// Generate QR code as base64-encoded PNG.
	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
		"qr_code":     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAEnable activates 2FA after the admin proves the authenticator app
// produces valid codes for the pending secret.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := a.userStore.FindByID(r.Context(), sess.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		writeError(w, http.StatusBadRequest, "Invalid code. Please try again.")
		return
	}

	if err := a.userStore.EnableTOTP(r.Context(), user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("two-factor authentication enabled", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]bool{"totp_enabled": true})
}
