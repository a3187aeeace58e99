package service

import (
	"fmt"

	"vocabduet/internal/models"
)

// PreferenceStore is the persisted tri-state save preference, read and
// written through an explicit interface so the policy is testable with
// an in-memory fake.
type PreferenceStore interface {
	GetPreference(userID string) (models.SavePreference, error)
	HasStoredPreference(userID string) (bool, error)
	SetPreference(userID string, pref models.SavePreference) error
}

// Decision is the outcome of the persistence policy at session
// completion.
type Decision struct {
	ShouldPrompt   bool `json:"shouldPrompt"`
	ShouldAutoSave bool `json:"shouldAutoSave"`

	// OfferRemember marks a first-ever prompt, where the UI also offers
	// to remember the choice for future sessions.
	OfferRemember bool `json:"offerRemember"`
}

// Decide applies the save-preference truth table. Without a linked
// partner there is nothing to save to, so it never prompts and never
// saves regardless of preference.
func Decide(pref models.SavePreference, hasLinkedPartner, isFirstSessionEver bool) Decision {
	if !hasLinkedPartner {
		return Decision{}
	}

	switch pref {
	case models.SaveAlways:
		return Decision{ShouldAutoSave: true}
	case models.SaveNever:
		return Decision{}
	}

	return Decision{ShouldPrompt: true, OfferRemember: isFirstSessionEver}
}

// PersistencePolicy binds the pure Decide table to a preference store.
type PersistencePolicy struct {
	prefs PreferenceStore
}

// NewPersistencePolicy creates a persistence policy over a preference store
func NewPersistencePolicy(prefs PreferenceStore) *PersistencePolicy {
	return &PersistencePolicy{prefs: prefs}
}

// DecideForUser reads the user's stored preference and applies the
// truth table. A user with no stored preference is on their first run
// and defaults to ask.
func (p *PersistencePolicy) DecideForUser(userID string, hasLinkedPartner bool) (Decision, error) {
	pref, err := p.prefs.GetPreference(userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read save preference: %w", err)
	}

	stored, err := p.prefs.HasStoredPreference(userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check save preference: %w", err)
	}

	return Decide(pref, hasLinkedPartner, !stored), nil
}

// RememberChoice persists a prompted user's answer for future sessions.
// Only always and never are storable; ask means keep prompting.
func (p *PersistencePolicy) RememberChoice(userID string, pref models.SavePreference) error {
	if !pref.Storable() {
		return fmt.Errorf("preference %q cannot be stored", pref)
	}
	return p.prefs.SetPreference(userID, pref)
}
