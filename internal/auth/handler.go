package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/elskow/murmures-api/internal/api"
	"github.com/elskow/murmures-api/internal/config"
)

const (
	maxBodyBytes = 1 << 20

	activationSuccess = "success"
	activationError   = "error"

	messageServerError = "server error"
)

type Handler struct {
	service    *Service
	session    *SessionMiddleware
	client     *config.ClientConfig
	cookieName string
	log        *zap.Logger
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	User    *PublicUser `json:"user"`
	Message string      `json:"message"`
}

func NewHandler(
	service *Service,
	session *SessionMiddleware,
	client *config.ClientConfig,
	cookieName string,
	log *zap.Logger,
) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		client:     client,
		cookieName: cookieName,
		log:        log,
	}
}

// Routes returns the account routes, to be mounted under api.UserPrefix.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post(api.UserRegister, h.Register)
	r.Post(api.UserLogin, h.Login)
	r.Get(api.UserVerifyMail, h.VerifyMail)
	r.With(h.session.LoadSession).Get(api.UserCurrent, h.Current)
	r.Delete(api.UserLogout, h.Logout)
	r.Post(api.UserForgotPassword, h.ForgotPassword)
	r.Post(api.UserResetPassword, h.ResetPassword)
	return r
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if !h.decode(w, r, &req) {
		return
	}

	message, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginInput
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, result.MaxAge))
	writeJSON(w, http.StatusOK, loginResponse{User: result.User, Message: result.Message})
}

// VerifyMail always answers with a redirect to the client.
func (h *Handler) VerifyMail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	user, err := h.service.ActivateByToken(r.Context(), token)
	if err != nil {
		switch KindOf(err) {
		case KindInternal, KindUpstream:
			h.log.Error("activation failed", zap.Error(err))
		default:
			h.log.Info("activation rejected", zap.Error(err))
		}
		http.Redirect(w, r, withMessage(h.client.ActivationErrorURL, activationError), http.StatusFound)
		return
	}

	h.log.Debug("activation redirect", zap.String("username", user.Username))
	http.Redirect(w, r, withMessage(h.client.ActivationSuccessURL, activationSuccess), http.StatusFound)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	user, err := GetUserFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, nil)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	message := h.service.Logout()
	http.SetCookie(w, h.expiredCookie())
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordInput
	if !h.decode(w, r, &req) {
		return
	}

	message, err := h.service.ForgotPassword(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordInput
	if !h.decode(w, r, &req) {
		return
	}
	req.Token = chi.URLParam(r, "token")

	message, err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *Handler) sessionCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func (h *Handler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.log.Warn("invalid request body",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := KindOf(err)
	if kind.IsClientError() {
		h.log.Warn("request rejected",
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err))
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: clientMessage(err)})
		return
	}

	h.log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("kind", kind.String()),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: messageServerError})
}

// clientMessage keeps validation details but hides wrapped causes of the
// other sentinels.
func clientMessage(err error) string {
	for _, sentinel := range []error{
		ErrAlreadyRegistered, ErrCheckEmail, ErrIncorrectCredentials,
		ErrIncorrectPassword, ErrNoSession, ErrEmailNotFound, ErrInvalidResetLink,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func withMessage(target, message string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target + "?message=" + message
	}
	q := u.Query()
	q.Set("message", message)
	u.RawQuery = q.Encode()
	return u.String()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
