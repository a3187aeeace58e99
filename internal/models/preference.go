package models

// SavePreference is the tri-state persisted choice controlling whether
// completed tutor sessions are written to the linked partner's
// progress. Only "always" and "never" are ever stored; an absent value
// means "ask".
type SavePreference string

const (
	SaveAlways SavePreference = "always"
	SaveNever  SavePreference = "never"
	SaveAsk    SavePreference = "ask"
)

// ParseSavePreference maps a stored string to a preference. Anything
// unrecognized (including the empty string) falls back to SaveAsk.
func ParseSavePreference(s string) SavePreference {
	switch SavePreference(s) {
	case SaveAlways:
		return SaveAlways
	case SaveNever:
		return SaveNever
	}
	return SaveAsk
}

// Storable reports whether the preference is one of the two values
// that may be persisted.
func (p SavePreference) Storable() bool {
	return p == SaveAlways || p == SaveNever
}
