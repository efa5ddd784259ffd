package domain

import "fmt"

const (
	ThemeMocha = "mocha"
	ThemeLatte = "latte"
)

// Preferences are the cosmetic host settings that survive a restart. The
// live session never does.
type Preferences struct {
	Theme string `json:"theme"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeMocha}
}

func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeMocha, ThemeLatte:
		return nil
	default:
		return fmt.Errorf("unsupported theme %q", p.Theme)
	}
}
