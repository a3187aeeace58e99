package handlers

import (
	"errors"
	"net/http"

	"vocabduet/internal/engine"
	"vocabduet/internal/models"
	"vocabduet/internal/service"
)

// ChallengeHandler exposes the challenge API
type ChallengeHandler struct {
	challenges *service.ChallengeService
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(challenges *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges}
}

type createChallengeRequest struct {
	LanguageCode  string                 `json:"languageCode"`
	Title         string                 `json:"title"`
	Type          models.ChallengeType   `json:"type"`
	Config        models.ChallengeConfig `json:"config"`
	ManualWordIDs []string               `json:"manualWordIds"`
	NewWords      []models.NewWord       `json:"newWords"`
}

// CreateChallenge handles POST /api/challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if !user.HasPartner() {
		respondWithError(w, http.StatusUnprocessableEntity, "No linked partner to challenge", "", nil)
		return
	}

	var req createChallengeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LanguageCode == "" {
		respondWithError(w, http.StatusBadRequest, "languageCode is required", "", nil)
		return
	}
	if req.Type != models.ChallengeQuiz && req.Type != models.ChallengeQuickFire {
		respondWithError(w, http.StatusBadRequest, "Unknown challenge type", "", nil)
		return
	}

	ch, err := h.challenges.Compose(r.Context(), service.ComposeInput{
		TutorID:       user.ID,
		StudentID:     user.PartnerID,
		StudentEmail:  user.PartnerEmail,
		StudentName:   user.PartnerName,
		TutorName:     user.Name,
		LanguageCode:  req.LanguageCode,
		Title:         req.Title,
		Type:          req.Type,
		Config:        req.Config,
		ManualWordIDs: req.ManualWordIDs,
		NewWords:      req.NewWords,
	})
	if err != nil {
		var belowMin *engine.BelowMinimumError
		if errors.As(err, &belowMin) {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create challenge", "", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ch)
}

// ListChallenges handles GET /api/challenges, listing challenges
// addressed to the caller, or sent by the caller with ?role=tutor
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var status models.ChallengeStatus
	switch r.URL.Query().Get("status") {
	case "pending":
		status = models.ChallengePending
	case "completed":
		status = models.ChallengeCompleted
	}

	var challenges []models.Challenge
	var err error
	if r.URL.Query().Get("role") == "tutor" {
		challenges, err = h.challenges.ListForTutor(user.ID, status)
	} else {
		challenges, err = h.challenges.ListForStudent(user.ID, status)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenges", "", err)
		return
	}
	if challenges == nil {
		challenges = []models.Challenge{}
	}
	respondWithJSON(w, http.StatusOK, challenges)
}

// GetChallenge handles GET /api/challenges/{id}
func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ch, err := h.challenges.Get(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenge", "", err)
		return
	}
	if ch == nil || (ch.StudentID != user.ID && ch.TutorID != user.ID) {
		respondWithError(w, http.StatusNotFound, "Challenge not found", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, ch)
}

// ChallengeWords handles GET /api/challenges/{id}/words
func (h *ChallengeHandler) ChallengeWords(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ch, err := h.challenges.Get(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenge", "", err)
		return
	}
	if ch == nil || (ch.StudentID != user.ID && ch.TutorID != user.ID) {
		respondWithError(w, http.StatusNotFound, "Challenge not found", "", nil)
		return
	}

	words, err := h.challenges.Words(ch)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenge words", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, words)
}

// CompleteChallenge handles POST /api/challenges/{id}/complete
func (h *ChallengeHandler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ch, err := h.challenges.Get(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenge", "", err)
		return
	}
	if ch == nil || ch.StudentID != user.ID {
		respondWithError(w, http.StatusNotFound, "Challenge not found", "", nil)
		return
	}

	if err := h.challenges.Complete(ch.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to complete challenge", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": string(models.ChallengeCompleted)})
}
