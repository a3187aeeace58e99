package handlers

import (
	"net/http"

	"vocabduet/internal/models"
	"vocabduet/internal/repository"
)

// VocabularyHandler exposes vocabulary and save preference endpoints
type VocabularyHandler struct {
	vocab *repository.VocabRepository
	prefs *repository.PreferenceRepository
}

// NewVocabularyHandler creates a new vocabulary handler
func NewVocabularyHandler(vocab *repository.VocabRepository, prefs *repository.PreferenceRepository) *VocabularyHandler {
	return &VocabularyHandler{vocab: vocab, prefs: prefs}
}

// ListVocabulary handles GET /api/vocabulary?language=xx. With
// forPartner=true it lists the linked partner's vocabulary, which the
// tutor needs for composing sessions and challenges.
func (h *VocabularyHandler) ListVocabulary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	language := r.URL.Query().Get("language")
	if language == "" {
		respondWithError(w, http.StatusBadRequest, "language is required", "", nil)
		return
	}

	userID := user.ID
	if r.URL.Query().Get("forPartner") == "true" {
		if !user.HasPartner() {
			respondWithError(w, http.StatusUnprocessableEntity, "No linked partner", "", nil)
			return
		}
		userID = user.PartnerID
	}

	items, err := h.vocab.ListVocabulary(userID, language)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load vocabulary", "", err)
		return
	}
	if items == nil {
		items = []models.VocabularyItem{}
	}
	respondWithJSON(w, http.StatusOK, items)
}

// GetPreference handles GET /api/preferences
func (h *VocabularyHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	pref, err := h.prefs.GetPreference(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load preference", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"savePreference": string(pref)})
}

type setPreferenceRequest struct {
	SavePreference string `json:"savePreference"`
}

// SetPreference handles PUT /api/preferences
func (h *VocabularyHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req setPreferenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pref := models.ParseSavePreference(req.SavePreference)
	if !pref.Storable() {
		respondWithError(w, http.StatusBadRequest, "savePreference must be always or never", "", nil)
		return
	}

	if err := h.prefs.SetPreference(user.ID, pref); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to store preference", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"savePreference": string(pref)})
}
