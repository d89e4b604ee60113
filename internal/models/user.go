package models

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeAMOLED Theme = "amoled"
	ThemeAuto   Theme = "auto"
)

type Preferences struct {
	Theme              Theme `json:"theme"`
	CompactView        bool  `json:"compact_view"`
	ShowTimestamps     bool  `json:"show_timestamps"`
	MotivationalQuotes bool  `json:"motivational_quotes"`
	AnimationsEnabled  bool  `json:"animations_enabled"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:              ThemeAuto,
		CompactView:        false,
		ShowTimestamps:     true,
		MotivationalQuotes: true,
		AnimationsEnabled:  true,
	}
}

type PreferencesPatch struct {
	Theme              *Theme `json:"theme"`
	CompactView        *bool  `json:"compact_view"`
	ShowTimestamps     *bool  `json:"show_timestamps"`
	MotivationalQuotes *bool  `json:"motivational_quotes"`
	AnimationsEnabled  *bool  `json:"animations_enabled"`
}

// Apply merges the supplied fields into p.
func (pp PreferencesPatch) Apply(p Preferences) Preferences {
	if pp.Theme != nil {
		p.Theme = *pp.Theme
	}
	if pp.CompactView != nil {
		p.CompactView = *pp.CompactView
	}
	if pp.ShowTimestamps != nil {
		p.ShowTimestamps = *pp.ShowTimestamps
	}
	if pp.MotivationalQuotes != nil {
		p.MotivationalQuotes = *pp.MotivationalQuotes
	}
	if pp.AnimationsEnabled != nil {
		p.AnimationsEnabled = *pp.AnimationsEnabled
	}
	return p
}

func IsValidTheme(t Theme) bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeAMOLED, ThemeAuto:
		return true
	}
	return false
}

// User is the owner record. Identity is issued elsewhere; the row only
// exists once the user has saved preferences.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Onboarded   bool        `json:"onboarded"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Export is the full data dump served by GET /user/export.
type Export struct {
	ExportDate time.Time  `json:"export_date"`
	User       ExportUser `json:"user"`
	Data       ExportData `json:"data"`
}

type ExportUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ExportData struct {
	Tasks     []Task          `json:"tasks"`
	Goals     []Goal          `json:"goals"`
	Watchlist []WatchlistItem `json:"watchlist"`
	History   []Activity      `json:"history"`
}
