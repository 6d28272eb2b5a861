package user

import (
	"encoding/json"
	"strings"
)

const (
	defaultLanguage = "en-US"
	defaultTheme    = "default"
)

// Settings is the decoded preference blob stored with a user.
type Settings struct {
	Language string            `json:"language,omitempty"`
	Theme    string            `json:"theme,omitempty"`
	Timezone string            `json:"timezone,omitempty"`
	Modals   map[string]bool   `json:"modals,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// DefaultSettings is what an absent or unreadable blob decodes to.
func DefaultSettings() Settings {
	return Settings{
		Language: defaultLanguage,
		Theme:    defaultTheme,
		Modals:   map[string]bool{},
		Extra:    map[string]string{},
	}
}

// DecodeSettings never fails: corrupt input yields DefaultSettings.
func DecodeSettings(blob string) Settings {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return DefaultSettings()
	}

	s := DefaultSettings()
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return DefaultSettings()
	}
	if s.Language == "" {
		s.Language = defaultLanguage
	}
	if s.Theme == "" {
		s.Theme = defaultTheme
	}
	if s.Modals == nil {
		s.Modals = map[string]bool{}
	}
	if s.Extra == nil {
		s.Extra = map[string]string{}
	}
	return s
}

// Encode serializes settings back into a blob.
func (s Settings) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
