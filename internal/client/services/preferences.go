package services

import (
	"encoding/json"
	"fmt"
)

// Preferences are the per-user display and notification settings.
type Preferences struct {
	Notifications bool   `json:"notifications"`
	EmailDigest   bool   `json:"emailDigest"`
	DarkMode      bool   `json:"darkMode"`
	Language      string `json:"language"`
	Timezone      string `json:"timezone"`
	AutoRefresh   bool   `json:"autoRefresh"`
	ItemsPerPage  int    `json:"itemsPerPage"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: true,
		EmailDigest:   true,
		DarkMode:      true,
		Language:      "es",
		Timezone:      "America/Argentina/Buenos_Aires",
		AutoRefresh:   true,
		ItemsPerPage:  20,
	}
}

func (p Preferences) asMap() (map[string]any, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	return m, nil
}
