// File: internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/collabers/backend/internal/auth"
	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/dtos"
	"github.com/collabers/backend/internal/middleware"
	"github.com/collabers/backend/internal/services/user_services"
	"github.com/collabers/backend/internal/services/verification"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	Accounts     *user_services.AccountService
	Verification *verification.Service
	FrontendURL  string
	// ExposeDevSecrets returns OTP and link token in API responses when no
	// real delivery channel is configured. Must be false in production.
	ExposeDevSecrets bool

	otpRe *regexp.Regexp
}

func NewAuthHandler(accounts *user_services.AccountService, verificationService *verification.Service, frontendURL string, exposeDevSecrets bool) *AuthHandler {
	return &AuthHandler{
		Accounts:         accounts,
		Verification:     verificationService,
		FrontendURL:      frontendURL,
		ExposeDevSecrets: exposeDevSecrets,
		// Pre-filter matching whatever length the engine generates.
		otpRe: regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, verificationService.OTPLength())),
	}
}

func (h *AuthHandler) badOTPMessage() string {
	return fmt.Sprintf("OTP must be a %d-digit code", h.Verification.OTPLength())
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register creates an account, kicks off email verification and returns a
// token pair so the client is signed in immediately (unverified).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, access, refresh, err := h.Accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := map[string]interface{}{
		"access_token":   access,
		"refresh_token":  refresh,
		"token_type":     "bearer",
		"message":        "Registration successful. Please verify your email.",
		"email_verified": false,
	}

	otp, linkToken, err := h.Verification.CreateChallenge(r.Context(), account, domain.PurposeEmailVerification)
	if err != nil {
		// The account exists; the client can resend from the verify screen.
		response["message"] = "Registration successful. Verification email could not be sent, please use resend."
	} else if h.ExposeDevSecrets {
		response["dev_otp"] = otp
		response["dev_link_token"] = linkToken
	}

	writeJSON(w, http.StatusCreated, response)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	_, access, refresh, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrAccountInactive) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
}

// Refresh exchanges a refresh token for a new pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	access, refresh, err := h.Accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		writeError(w, http.StatusInternalServerError, "something went wrong, please try again later")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(account))
}

// ResendVerification issues a fresh email-verification challenge.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if account.EmailVerified {
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	}

	otp, linkToken, err := h.Verification.CreateChallenge(r.Context(), account, domain.PurposeEmailVerification)
	if err != nil {
		writeVerificationError(w, err)
		return
	}

	response := map[string]interface{}{"message": "Verification email sent. Check your inbox."}
	if h.ExposeDevSecrets {
		response["dev_otp"] = otp
		response["dev_link_token"] = linkToken
	}
	writeJSON(w, http.StatusOK, response)
}

// VerifyOTP confirms the account's email with a submitted code.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	account := middleware.UserFromContext(r.Context())
	if account == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if account.EmailVerified {
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	}

	var req struct {
		OTP string `json:"otp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.otpRe.MatchString(req.OTP) {
		writeError(w, http.StatusBadRequest, h.badOTPMessage())
		return
	}

	if err := h.Verification.VerifyOTP(r.Context(), account, domain.PurposeEmailVerification, req.OTP); err != nil {
		writeVerificationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully"})
}

// VerifyLink confirms the email via the emailed link and redirects to the
// frontend with the outcome. This endpoint is unauthenticated: the token is
// the proof.
func (h *AuthHandler) VerifyLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if len(token) < 32 {
		h.redirectVerifyResult(w, r, "error", "Invalid verification link")
		return
	}

	_, err := h.Verification.VerifyLinkToken(r.Context(), token, domain.PurposeEmailVerification)
	if err != nil {
		h.redirectVerifyResult(w, r, "error", err.Error())
		return
	}
	h.redirectVerifyResult(w, r, "success", "")
}

func (h *AuthHandler) redirectVerifyResult(w http.ResponseWriter, r *http.Request, status, msg string) {
	target := fmt.Sprintf("%s/verify-email?status=%s", h.FrontendURL, status)
	if msg != "" {
		target += "&message=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// RequestPasswordReset starts a password reset. The response is identical
// whether or not the address has an account, and rate limiting is swallowed
// too, so the endpoint leaks nothing about which emails exist.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	genericResponse := map[string]interface{}{
		"message": "If an account exists with this email, a password reset link has been sent.",
	}

	account, err := h.Accounts.GetByEmail(r.Context(), req.Email)
	if err == nil {
		otp, linkToken, err := h.Verification.CreateChallenge(r.Context(), account, domain.PurposePasswordReset)
		if err == nil && h.ExposeDevSecrets {
			genericResponse["dev_otp"] = otp
			genericResponse["dev_link_token"] = linkToken
		}
	}

	writeJSON(w, http.StatusOK, genericResponse)
}

type resetPasswordOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordOTP resets the password after validating the emailed code.
func (h *AuthHandler) ResetPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.otpRe.MatchString(req.OTP) {
		writeError(w, http.StatusBadRequest, h.badOTPMessage())
		return
	}

	account, err := h.Accounts.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email or verification code")
		return
	}

	if err := h.Verification.VerifyOTP(r.Context(), account, domain.PurposePasswordReset, req.OTP); err != nil {
		writeVerificationError(w, err)
		return
	}
	if err := h.Accounts.UpdatePassword(r.Context(), account, req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

type resetPasswordLinkRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordLink resets the password after validating the emailed link
// token.
func (h *AuthHandler) ResetPasswordLink(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Token) < 32 {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	account, err := h.Verification.VerifyLinkToken(r.Context(), req.Token, domain.PurposePasswordReset)
	if err != nil {
		writeVerificationError(w, err)
		return
	}
	if err := h.Accounts.UpdatePassword(r.Context(), account, req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}
