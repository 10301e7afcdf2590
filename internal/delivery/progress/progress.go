package progress

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"edu_progress/internal/domain/profile"
	errs "edu_progress/internal/errors"
	"edu_progress/internal/httpresponse"
	"edu_progress/internal/middleware"
	progressUC "edu_progress/internal/usecase/progress"
	sessionUC "edu_progress/internal/usecase/session"
	"edu_progress/internal/utils"
)

type ProgressHandler struct {
	store    *progressUC.Store
	sessions *sessionUC.Registry
	log      *zap.SugaredLogger
}

type CreateProfileRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type CreateProfileResponse struct {
	Code string `json:"code"`
}

type XPRequest struct {
	Amount int `json:"amount"`
}

type AchievementRequest struct {
	ID string `json:"id"`
}

type PreferencesRequest struct {
	DrinkPreference *string  `json:"drinkPreference"`
	LearningGoal    *string  `json:"learningGoal"`
	TreeProgress    *float64 `json:"treeProgress"`
}

func NewProgressHandler(log *zap.SugaredLogger, store *progressUC.Store, sessions *sessionUC.Registry) *ProgressHandler {
	return &ProgressHandler{
		store:    store,
		sessions: sessions,
		log:      log,
	}
}

// currentUser resolves the session of the calling client or answers 401.
func (h *ProgressHandler) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	m := h.sessions.ForClient(middleware.ClientIDFromContext(r.Context()))
	code, ok := m.GetSession(r.Context())
	if !ok {
		httpresponse.WriteError(w, http.StatusUnauthorized, httpresponse.UNAUTHORIZED_errorDesc)
	}
	return code, ok
}

// writeFailed maps a store error of a write operation to a response.
func (h *ProgressHandler) writeFailed(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrProfileNotFound), errors.Is(err, errs.ErrProgressNotInitialized):
		httpresponse.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Errorf("%s: %v", op, err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, httpresponse.PROGRESSNOTSAVED_errorDesc)
	}
}

func (h *ProgressHandler) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := utils.DecodeJSONRequest(w, r, dst); err != nil {
		h.log.Errorf("%s: malformed JSON: %v", op, err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return false
	}
	return true
}

// CreateProfile registers a learner and opens a session for the new code.
func (h *ProgressHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if !h.decode(w, r, "CreateProfile", &req) {
		return
	}

	code, err := h.store.CreateUserProfile(r.Context(), req.Name, req.Age)
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, errs.ErrCodeAllocation):
		h.log.Error("CreateProfile: ", err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, "could not allocate a user code")
		return
	case err != nil:
		h.log.Error("CreateProfile: ", err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, "profile not saved")
		return
	}

	m := h.sessions.ForClient(middleware.ClientIDFromContext(r.Context()))
	if !m.CreateSession(r.Context(), code) {
		h.log.Errorf("CreateProfile: session for %s not created", code)
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, CreateProfileResponse{Code: code})
}

func (h *ProgressHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.writeProfile(w, r, code)
}

func (h *ProgressHandler) writeProfile(w http.ResponseWriter, r *http.Request, code string) {
	p, err := h.store.GetUserProfile(r.Context(), code)
	if err != nil {
		h.log.Errorf("GetProfile %s: %v", code, err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, "profile store unavailable")
		return
	}
	if p == nil {
		httpresponse.WriteError(w, http.StatusNotFound, "profile not found")
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, p)
}

// AddXP adds experience and unlocks any level milestones reached.
func (h *ProgressHandler) AddXP(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req XPRequest
	if !h.decode(w, r, "AddXP", &req) {
		return
	}
	if err := h.store.AddUserXP(r.Context(), code, req.Amount); err != nil {
		h.writeFailed(w, "AddXP", err)
		return
	}
	if err := h.store.SyncLevelAchievements(r.Context(), code); err != nil {
		h.writeFailed(w, "AddXP", err)
		return
	}
	h.writeProfile(w, r, code)
}

func (h *ProgressHandler) UnlockAchievement(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req AchievementRequest
	if !h.decode(w, r, "UnlockAchievement", &req) {
		return
	}
	if err := h.store.UnlockAchievement(r.Context(), code, req.ID); err != nil {
		h.writeFailed(w, "UnlockAchievement", err)
		return
	}
	h.writeProfile(w, r, code)
}

func (h *ProgressHandler) EmptyGlass(w http.ResponseWriter, r *http.Request) {
	h.simpleUpdate(w, r, "EmptyGlass", h.store.EmptyGlass)
}

func (h *ProgressHandler) FillGlass(w http.ResponseWriter, r *http.Request) {
	h.simpleUpdate(w, r, "FillGlass", h.store.FillGlass)
}

func (h *ProgressHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	h.simpleUpdate(w, r, "RecordActivity", h.store.RecordActivity)
}

func (h *ProgressHandler) simpleUpdate(w http.ResponseWriter, r *http.Request, op string, update func(ctx context.Context, code string) error) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := update(r.Context(), code); err != nil {
		h.writeFailed(w, op, err)
		return
	}
	h.writeProfile(w, r, code)
}

func (h *ProgressHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req PreferencesRequest
	if !h.decode(w, r, "SetPreferences", &req) {
		return
	}

	err := h.store.UpdatePreferences(r.Context(), code, progressUC.Preferences{
		DrinkPreference: req.DrinkPreference,
		LearningGoal:    req.LearningGoal,
		TreeProgress:    req.TreeProgress,
	})
	if err != nil {
		h.writeFailed(w, "SetPreferences", err)
		return
	}
	h.writeProfile(w, r, code)
}

func progressKey(r *http.Request) string {
	return chi.URLParam(r, "key")
}

func parseDifficulty(w http.ResponseWriter, raw string) (profile.Difficulty, bool) {
	d, err := profile.ParseDifficulty(raw)
	if err != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return d, true
}
