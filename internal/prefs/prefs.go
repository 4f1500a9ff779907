package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shopping-list/internal/models"
)

const (
	credFileName     = "credentials.json"
	settingsFileName = "settings.json"
)

// Credentials — сохранённая сессия клиента.
type Credentials struct {
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	Source    string    `json:"source"` // "env" | "file"
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Settings struct {
	Theme models.Theme `json:"theme"`
}

// Store хранит файлы клиента в одном каталоге (по умолчанию ~/.shopping).
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir учитывает SHOPPING_HOME, иначе ~/.shopping.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("SHOPPING_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".shopping"), nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Credentials возвращает nil, nil если клиент не входил.
func (s *Store) Credentials() (*Credentials, error) {
	if env := strings.TrimSpace(os.Getenv("SHOPPING_TOKEN")); env != "" {
		return &Credentials{Token: stripBearer(env), Source: "env"}, nil
	}

	var c Credentials
	found, err := s.read(credFileName, &c)
	if err != nil || !found {
		return nil, err
	}
	c.Token = stripBearer(c.Token)
	return &c, nil
}

func (s *Store) SaveCredentials(server, token string, expires time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return errors.New("empty token")
	}
	return s.write(credFileName, Credentials{
		Server:    server,
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	})
}

func (s *Store) DeleteCredentials() error {
	if err := os.Remove(filepath.Join(s.dir, credFileName)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (s *Store) LoadTheme() (models.Theme, error) {
	var st Settings
	if _, err := s.read(settingsFileName, &st); err != nil {
		return models.ThemeLight, err
	}
	return models.ParseTheme(string(st.Theme)), nil
}

func (s *Store) SaveTheme(t models.Theme) error {
	return s.write(settingsFileName, Settings{Theme: t})
}

func (s *Store) read(name string, out any) (bool, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) write(name string, v any) error {
	// каталог 0700, файлы 0600 — только владелец
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
