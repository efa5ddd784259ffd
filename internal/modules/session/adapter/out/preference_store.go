package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"keycycle/internal/modules/session/domain"
	sessionout "keycycle/internal/modules/session/port/out"
)

type FilePreferenceStore struct {
	path string
}

func NewFilePreferenceStore(path string) sessionout.PreferenceStore {
	return &FilePreferenceStore{path: path}
}

func (s *FilePreferenceStore) Save(_ context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	payload, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// Load returns the defaults when nothing was saved yet.
func (s *FilePreferenceStore) Load(_ context.Context) (domain.Preferences, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultPreferences(), nil
		}
		return domain.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	prefs := domain.DefaultPreferences()
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	if err := prefs.Validate(); err != nil {
		return domain.DefaultPreferences(), nil
	}
	return prefs, nil
}
