package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"vocabduet/internal/engine"
	"vocabduet/internal/models"
	"vocabduet/internal/service"
)

// SessionHandler exposes the live practice session API
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type startSessionRequest struct {
	LanguageCode  string           `json:"languageCode"`
	Mode          models.GameMode  `json:"mode"`
	ForPartner    bool             `json:"forPartner"`
	ManualWordIDs []string         `json:"manualWordIds"`
	NewWords      []models.NewWord `json:"newWords"`
}

// StartSession handles POST /api/sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LanguageCode == "" {
		respondWithError(w, http.StatusBadRequest, "languageCode is required", "", nil)
		return
	}

	targetUserID := ""
	if req.ForPartner {
		if !user.HasPartner() {
			respondWithError(w, http.StatusUnprocessableEntity, "No linked partner", "", nil)
			return
		}
		targetUserID = user.PartnerID
	}

	view, err := h.sessions.StartSession(service.StartSessionInput{
		UserID:        user.ID,
		TargetUserID:  targetUserID,
		LanguageCode:  req.LanguageCode,
		Mode:          req.Mode,
		ManualWordIDs: req.ManualWordIDs,
		NewWords:      req.NewWords,
	})
	if err != nil {
		respondSessionError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	view, err := h.sessions.State(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

type gradeRequest struct {
	Answer string `json:"answer"`
}

// GradeAnswer handles POST /api/sessions/{id}/answers
func (h *SessionHandler) GradeAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	var req gradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.sessions.Grade(r.Context(), sessionID, req.Answer)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// ContinueBasic handles POST /api/sessions/{id}/basic-only, the
// player's opt-in to exact-match grading after a rate-limit notice
func (h *SessionHandler) ContinueBasic(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	if err := h.sessions.ContinueBasic(sessionID); err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"basicOnly": true})
}

type completeResponse struct {
	Result   models.SessionResult `json:"result"`
	Decision service.Decision     `json:"decision"`
	Saved    bool                 `json:"saved"`
}

// CompleteSession handles POST /api/sessions/{id}/complete. When the
// stored preference is always, the session is saved here without a
// prompt; a failed save is reported as saved:false and never blocks.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	view, err := h.sessions.Complete(sessionID)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	resp := completeResponse{Result: view.Result, Decision: view.Decision}
	if view.Decision.ShouldAutoSave {
		if _, err := h.sessions.Save(sessionID, models.SaveAsk); err != nil && !errors.Is(err, service.ErrSessionAlreadySubmitted) {
			respondWithJSON(w, http.StatusOK, resp)
			return
		}
		resp.Saved = true
	}
	respondWithJSON(w, http.StatusOK, resp)
}

type saveRequest struct {
	Save     bool   `json:"save"`
	Remember string `json:"remember,omitempty"` // "always" or "never"
}

// SaveSession handles POST /api/sessions/{id}/save, the player's answer
// to the save prompt
func (h *SessionHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	var req saveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	remember := models.SaveAsk
	if req.Remember != "" {
		remember = models.ParseSavePreference(req.Remember)
	}

	if !req.Save {
		if remember.Storable() {
			if err := h.sessions.RememberChoice(GetUserFromContext(r.Context()).ID, remember); err != nil {
				respondWithError(w, http.StatusInternalServerError, "Failed to store preference", "", err)
				return
			}
		}
		h.sessions.Discard(sessionID)
		respondWithJSON(w, http.StatusOK, map[string]bool{"saved": false})
		return
	}

	rec, err := h.sessions.Save(sessionID, remember)
	if errors.Is(err, service.ErrSessionAlreadySubmitted) {
		respondWithJSON(w, http.StatusOK, map[string]bool{"saved": true})
		return
	}
	if err != nil {
		// Submission failures are non-fatal: report not-saved and let
		// the player move on.
		respondWithError(w, http.StatusOK, "Session could not be saved", "Failed to save session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"saved": true, "session": rec})
}

type abortRequest struct {
	Confirmed bool `json:"confirmed"`
}

// AbortSession handles POST /api/sessions/{id}/abort
func (h *SessionHandler) AbortSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.ownSession(w, r)
	if !ok {
		return
	}

	var req abortRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.sessions.Abort(sessionID, req.Confirmed); err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"state": "aborted"})
}

// History handles GET /api/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	records, err := h.sessions.History(user.ID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load history", "", err)
		return
	}
	if records == nil {
		records = []models.GameSessionRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

// HistoryDetail handles GET /api/history/{id}
func (h *SessionHandler) HistoryDetail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	rec, err := h.sessions.HistoryDetail(user.ID, r.PathValue("id"))
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// ownSession extracts the path id and enforces that the session belongs
// to the caller. Unknown and foreign sessions look the same.
func (h *SessionHandler) ownSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.PathValue("id")
	user := GetUserFromContext(r.Context())
	if sessionID == "" || user == nil || !h.sessions.Owns(sessionID, user.ID) {
		respondWithError(w, http.StatusNotFound, "Session not found", "", nil)
		return "", false
	}
	return sessionID, true
}

// respondSessionError maps domain errors onto HTTP statuses
func respondSessionError(w http.ResponseWriter, err error) {
	var belowMin *engine.BelowMinimumError
	var invalid *engine.InvalidTransitionError

	switch {
	case errors.As(err, &belowMin):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
	case errors.As(err, &invalid):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrSessionNotFound):
		respondWithError(w, http.StatusNotFound, "Session not found", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong", "Session operation failed", err)
	}
}
