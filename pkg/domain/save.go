package domain

import "time"

// SaveData is the persisted state of one player profile: the global variable
// store as it was at the last save. Session-local variables are never saved.
type SaveData struct {
	Profile   string           `json:"profile"`
	Globals   VariableSnapshot `json:"globals"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewSaveData creates save data stamped with the current time.
func NewSaveData(profile string, globals VariableSnapshot) *SaveData {
	return &SaveData{Profile: profile, Globals: globals, UpdatedAt: time.Now()}
}

// Clone returns a deep copy, so stores can isolate their contents from callers.
func (s *SaveData) Clone() *SaveData {
	if s == nil {
		return nil
	}
	out := *s
	out.Globals = VariableSnapshot{
		Ints:    append([]IntEntry(nil), s.Globals.Ints...),
		Bools:   append([]BoolEntry(nil), s.Globals.Bools...),
		Strings: append([]StringEntry(nil), s.Globals.Strings...),
	}
	return &out
}
