package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyBaseURL     = "api.base_url"
	keyTimeout     = "api.timeout"
	keyToken       = "auth.token"
	keyUserID      = "auth.user_id"
	keyUsername    = "auth.username"
	keyDatabaseURL = "database.url"
)

// Settings is the CLI's TOML config file, overridable with SUARA_*
// environment variables (SUARA_API_BASE_URL, SUARA_DATABASE_URL, ...).
type Settings struct {
	v    *viper.Viper
	path string
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "suara", "config.toml"), nil
}

// LoadSettings reads path, or the per-user default when path is empty.
// A missing file yields defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		path = p
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	v.SetDefault(keyBaseURL, "http://localhost:8080")
	v.SetDefault(keyTimeout, 30)
	v.SetDefault(keyDatabaseURL, "sqlite://suara.db")
	v.SetEnvPrefix("SUARA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return &Settings{v: v, path: path}, nil
}

func (s *Settings) Path() string        { return s.path }
func (s *Settings) BaseURL() string     { return s.v.GetString(keyBaseURL) }
func (s *Settings) TimeoutSeconds() int { return s.v.GetInt(keyTimeout) }
func (s *Settings) Token() string       { return s.v.GetString(keyToken) }
func (s *Settings) DatabaseURL() string { return s.v.GetString(keyDatabaseURL) }
func (s *Settings) UserID() string      { return s.v.GetString(keyUserID) }
func (s *Settings) Username() string    { return s.v.GetString(keyUsername) }

// SaveSession stores the login so later commands are authenticated.
func (s *Settings) SaveSession(token, userID, username string) error {
	s.v.Set(keyToken, token)
	s.v.Set(keyUserID, userID)
	s.v.Set(keyUsername, username)
	return s.Save()
}

// ClearSession forgets the stored login.
func (s *Settings) ClearSession() error {
	return s.SaveSession("", "", "")
}

func (s *Settings) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(s.path, 0o600)
}
