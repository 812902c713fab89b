package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/internal/session"
)

// Handler exposes the account lifecycle over HTTP.
type Handler struct {
	svc      *Service
	sessions *session.Service
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, sessions *session.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
	)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.svc.Register(r.Context(), RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrConflict):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.logger.Errorw("registration failed", "username", req.Username, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Registration failed. Please try again."})
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful! Please check your email to verify your account.",
		"user_id": u.ID,
	})
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadCredentials):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		case errors.Is(err, ErrNotVerified):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Please verify your email before logging in"})
		case errors.Is(err, ErrPendingApproval):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Your account is pending approval"})
		default:
			h.logger.Errorw("login failed", "username", req.Username, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		}
		return
	}
	token, err := h.sessions.Issue(r.Context(), u, req.RememberMe)
	if err != nil {
		h.logger.Errorw("session issue failed", "user", u.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user": map[string]any{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"is_admin":   u.IsAdmin,
		},
	})
}

// ResendVerificationRequest is the body of POST /api/resend-verification.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (r ResendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		h.logger.Errorw("resend verification failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not resend verification email"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "If the address belongs to an unverified account, a new verification email has been sent."})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Please log in to access this resource"})
		return
	}
	if err := h.sessions.Revoke(r.Context(), id.SessionID); err != nil {
		h.logger.Warnw("session revoke failed", "session", id.SessionID, "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Please log in to access this resource"})
		return
	}
	u, err := h.svc.GetUser(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u.Profile())
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid verification token"})
		case errors.Is(err, ErrTokenExpired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Verification token has expired"})
		default:
			h.logger.Errorw("email verification failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Verification failed"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully! You can now log in."})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.logger.Errorw("list users failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}
	profiles := make([]entity.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": profiles})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	u, err := h.svc.Approve(r.Context(), id, approve)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, ErrInvalidTransition):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Account must verify its email before a decision can be made"})
		default:
			h.logger.Errorw("approval update failed", "user", id, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update user"})
		}
		return
	}
	verb := "rejected"
	if approve {
		verb = "approved"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("User %s %s", u.Username, verb)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
