package progress

import (
	"net/http"

	"edu_progress/internal/domain/profile"
	"edu_progress/internal/httpresponse"
)

type InitRequest struct {
	Difficulty       string `json:"difficulty"`
	TutorialSections int    `json:"tutorialSections"`
	GameLevels       int    `json:"gameLevels"`
	// Overwrite resets an existing record; otherwise an existing one is kept.
	Overwrite bool `json:"overwrite"`
}

type TutorialRequest struct {
	CurrentSection    int   `json:"currentSection"`
	CompletedSections []int `json:"completedSections"`
	Completed         bool  `json:"completed"`
}

type GameRequest struct {
	CurrentLevel    int   `json:"currentLevel"`
	CompletedLevels []int `json:"completedLevels"`
	Completed       bool  `json:"completed"`
}

type SandboxRequest struct {
	Difficulty         string `json:"difficulty"`
	CurrentExercise    int    `json:"currentExercise"`
	CompletedExercises []int  `json:"completedExercises"`
	TotalExercises     int    `json:"totalExercises"`
}

type DifficultyRequest struct {
	Activity   string `json:"activity"`
	Difficulty string `json:"difficulty"`
}

func (h *ProgressHandler) InitLanguage(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	req := InitRequest{Difficulty: string(profile.DifficultyEasy)}
	if !h.decode(w, r, "InitLanguage", &req) {
		return
	}
	difficulty, ok := parseDifficulty(w, req.Difficulty)
	if !ok {
		return
	}

	key := progressKey(r)
	initialize := h.store.EnsureLanguageProgress
	if req.Overwrite {
		initialize = h.store.InitializeLanguageProgress
	}
	if err := initialize(r.Context(), code, key, difficulty, req.TutorialSections, req.GameLevels); err != nil {
		h.writeFailed(w, "InitLanguage", err)
		return
	}
	h.writeSummary(w, r, code, key)
}

func (h *ProgressHandler) UpdateTutorial(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req TutorialRequest
	if !h.decode(w, r, "UpdateTutorial", &req) {
		return
	}
	key := progressKey(r)
	if err := h.store.UpdateTutorialProgress(r.Context(), code, key, req.CurrentSection, req.CompletedSections, req.Completed); err != nil {
		h.writeFailed(w, "UpdateTutorial", err)
		return
	}
	h.writeSummary(w, r, code, key)
}

func (h *ProgressHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req GameRequest
	if !h.decode(w, r, "UpdateGame", &req) {
		return
	}
	key := progressKey(r)
	if err := h.store.UpdateGameProgress(r.Context(), code, key, req.CurrentLevel, req.CompletedLevels, req.Completed); err != nil {
		h.writeFailed(w, "UpdateGame", err)
		return
	}
	h.writeSummary(w, r, code, key)
}

func (h *ProgressHandler) UpdateSandbox(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req SandboxRequest
	if !h.decode(w, r, "UpdateSandbox", &req) {
		return
	}
	difficulty, ok := parseDifficulty(w, req.Difficulty)
	if !ok {
		return
	}
	key := progressKey(r)
	err := h.store.UpdateSandboxProgress(r.Context(), code, key, difficulty, req.CurrentExercise, req.CompletedExercises, req.TotalExercises)
	if err != nil {
		h.writeFailed(w, "UpdateSandbox", err)
		return
	}
	h.writeSummary(w, r, code, key)
}

func (h *ProgressHandler) MarkDifficulty(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req DifficultyRequest
	if !h.decode(w, r, "MarkDifficulty", &req) {
		return
	}
	activity, err := profile.ParseActivityType(req.Activity)
	if err != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	difficulty, ok := parseDifficulty(w, req.Difficulty)
	if !ok {
		return
	}
	key := progressKey(r)
	if err := h.store.MarkDifficultyCompleted(r.Context(), code, key, activity, difficulty); err != nil {
		h.writeFailed(w, "MarkDifficulty", err)
		return
	}
	h.writeSummary(w, r, code, key)
}

func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	code, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.writeSummary(w, r, code, progressKey(r))
}

func (h *ProgressHandler) writeSummary(w http.ResponseWriter, r *http.Request, code, key string) {
	summary, err := h.store.Summary(r.Context(), code, key)
	if err != nil {
		h.log.Errorf("Summary %s/%s: %v", code, key, err)
		httpresponse.WriteError(w, http.StatusServiceUnavailable, "profile store unavailable")
		return
	}
	if summary == nil {
		httpresponse.WriteError(w, http.StatusNotFound, "progress not initialized")
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, summary)
}
