package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"edu_progress/internal/bootstrap"
	"edu_progress/internal/domain/profile"
	sessionDomain "edu_progress/internal/domain/session"
	errs "edu_progress/internal/errors"
	"edu_progress/internal/httpresponse"
	"edu_progress/internal/middleware"
	sessionUC "edu_progress/internal/usecase/session"
	"edu_progress/internal/utils"
)

// ProfileLookup is how login checks that a user code belongs to a profile.
type ProfileLookup interface {
	GetUserProfile(ctx context.Context, code string) (*profile.UserProfile, error)
}

type SessionHandler struct {
	sessions *sessionUC.Registry
	profiles ProfileLookup
	cfg      bootstrap.Config
	log      *zap.SugaredLogger
}

type LoginRequest struct {
	Code string `json:"code"`
}

type StatusResponse struct {
	UserCode     string `json:"userCode"`
	RemainingMs  int64  `json:"remainingMs"`
	ExpiringSoon bool   `json:"expiringSoon"`
}

func NewSessionHandler(cfg bootstrap.Config, log *zap.SugaredLogger, sessions *sessionUC.Registry, profiles ProfileLookup) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		profiles: profiles,
		cfg:      cfg,
		log:      log,
	}
}

func (h *SessionHandler) manager(r *http.Request) *sessionUC.Manager {
	return h.sessions.ForClient(middleware.ClientIDFromContext(r.Context()))
}

// NormalizeUserCode accepts codes typed in lower case or with surrounding spaces.
func NormalizeUserCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Login opens a session for an existing profile.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		h.log.Error("Login: malformed JSON: ", err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	code := NormalizeUserCode(req.Code)
	if !sessionDomain.ValidUserCode(code) {
		httpresponse.WriteError(w, http.StatusBadRequest, errs.ErrInvalidUserCode.Error())
		return
	}

	p, err := h.profiles.GetUserProfile(r.Context(), code)
	if err != nil {
		h.log.Errorf("Login: profile lookup for %s failed: %v", code, err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, "profile store unavailable")
		return
	}
	if p == nil {
		httpresponse.WriteError(w, http.StatusNotFound, "unknown user code")
		return
	}

	m := h.manager(r)
	if !m.CreateSession(r.Context(), code) {
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	h.log.Infof("Login: session opened for %s", code)
	h.writeStatus(w, r, m, code)
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	m := h.manager(r)
	code, ok := m.GetSession(r.Context())
	if !ok {
		httpresponse.WriteError(w, http.StatusUnauthorized, httpresponse.UNAUTHORIZED_errorDesc)
		return
	}
	h.writeStatus(w, r, m, code)
}

func (h *SessionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	m := h.manager(r)
	if !m.ExtendSession(r.Context()) {
		httpresponse.WriteError(w, http.StatusUnauthorized, httpresponse.UNAUTHORIZED_errorDesc)
		return
	}
	code, ok := m.GetSession(r.Context())
	if !ok {
		httpresponse.WriteError(w, http.StatusUnauthorized, httpresponse.UNAUTHORIZED_errorDesc)
		return
	}
	h.writeStatus(w, r, m, code)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.manager(r).ClearSession(r.Context())
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, nil)
}

func (h *SessionHandler) writeStatus(w http.ResponseWriter, r *http.Request, m *sessionUC.Manager, code string) {
	remaining := m.RemainingTime(r.Context())
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, StatusResponse{
		UserCode:     code,
		RemainingMs:  remaining.Milliseconds(),
		ExpiringSoon: remaining > 0 && remaining <= h.warning(),
	})
}

func (h *SessionHandler) warning() time.Duration {
	if h.cfg.SessionWarning > 0 {
		return h.cfg.SessionWarning
	}
	return sessionUC.DefaultWarningThreshold
}
