package service

import (
	"testing"

	"vocabduet/internal/models"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		pref       models.SavePreference
		hasPartner bool
		isFirst    bool
		want       Decision
	}{
		{
			name:       "no partner never prompts or saves",
			pref:       models.SaveAlways,
			hasPartner: false,
			want:       Decision{},
		},
		{
			name:       "always auto-saves silently",
			pref:       models.SaveAlways,
			hasPartner: true,
			want:       Decision{ShouldAutoSave: true},
		},
		{
			name:       "never stays silent regardless of partner",
			pref:       models.SaveNever,
			hasPartner: true,
			want:       Decision{},
		},
		{
			name:       "ask prompts",
			pref:       models.SaveAsk,
			hasPartner: true,
			want:       Decision{ShouldPrompt: true},
		},
		{
			name:       "first ever session prompts and offers remember",
			pref:       models.SaveAsk,
			hasPartner: true,
			isFirst:    true,
			want:       Decision{ShouldPrompt: true, OfferRemember: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.pref, tt.hasPartner, tt.isFirst)
			if got != tt.want {
				t.Errorf("Decide(%v, %v, %v) = %+v, want %+v", tt.pref, tt.hasPartner, tt.isFirst, got, tt.want)
			}
		})
	}
}

type fakePreferenceStore struct {
	prefs map[string]models.SavePreference
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{prefs: make(map[string]models.SavePreference)}
}

func (f *fakePreferenceStore) GetPreference(userID string) (models.SavePreference, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return models.SaveAsk, nil
}

func (f *fakePreferenceStore) HasStoredPreference(userID string) (bool, error) {
	_, ok := f.prefs[userID]
	return ok, nil
}

func (f *fakePreferenceStore) SetPreference(userID string, pref models.SavePreference) error {
	f.prefs[userID] = pref
	return nil
}

func TestPersistencePolicyFirstRun(t *testing.T) {
	policy := NewPersistencePolicy(newFakePreferenceStore())

	decision, err := policy.DecideForUser("u1", true)
	if err != nil {
		t.Fatalf("DecideForUser failed: %v", err)
	}
	if !decision.ShouldPrompt || decision.ShouldAutoSave {
		t.Errorf("first run should prompt without auto-save, got %+v", decision)
	}
	if !decision.OfferRemember {
		t.Error("first run should offer to remember the choice")
	}
}

func TestPersistencePolicyRememberedChoice(t *testing.T) {
	store := newFakePreferenceStore()
	policy := NewPersistencePolicy(store)

	if err := policy.RememberChoice("u1", models.SaveAlways); err != nil {
		t.Fatalf("RememberChoice failed: %v", err)
	}

	decision, err := policy.DecideForUser("u1", true)
	if err != nil {
		t.Fatalf("DecideForUser failed: %v", err)
	}
	if !decision.ShouldAutoSave || decision.ShouldPrompt {
		t.Errorf("remembered always should auto-save without prompting, got %+v", decision)
	}
	if decision.OfferRemember {
		t.Error("stored preference should not offer remember again")
	}
}

func TestRememberChoiceRejectsAsk(t *testing.T) {
	policy := NewPersistencePolicy(newFakePreferenceStore())
	if err := policy.RememberChoice("u1", models.SaveAsk); err == nil {
		t.Error("expected error when storing ask")
	}
}
