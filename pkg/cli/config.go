package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultProfile = "default"

// UserConfig represents ~/.bank/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile" json:"current_profile"`
	Profiles       map[string]Profile `yaml:"profiles" json:"profiles"`
}

// Profile represents a single named configuration profile.
type Profile struct {
	Host     string `yaml:"host,omitempty" json:"host,omitempty"`
	Identity string `yaml:"identity,omitempty" json:"identity,omitempty"`
	Token    string `yaml:"token,omitempty" json:"token,omitempty"`
	Output   string `yaml:"output,omitempty" json:"output,omitempty"`
}

func newUserConfig() *UserConfig {
	return &UserConfig{CurrentProfile: defaultProfile, Profiles: map[string]Profile{}}
}

// profileName returns the override if set, else the current profile, else "default".
func (c *UserConfig) profileName(override string) string {
	switch {
	case override != "":
		return override
	case c.CurrentProfile != "":
		return c.CurrentProfile
	default:
		return defaultProfile
	}
}

// ActiveProfile returns the profile to use based on the override or current-profile.
// An explicit override must name an existing profile.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	name := c.profileName(override)
	p, ok := c.Profiles[name]
	if !ok && override != "" {
		return Profile{}, fmt.Errorf("profile %q not found", override)
	}
	return p, nil
}

// updateProfile applies fn to the named profile (created if missing) and saves.
func updateProfile(override string, fn func(*Profile)) (string, error) {
	cfg, err := LoadUserConfig()
	if err != nil {
		cfg = newUserConfig()
	}
	name := cfg.profileName(override)
	if cfg.CurrentProfile == "" {
		cfg.CurrentProfile = name
	}
	p := cfg.Profiles[name]
	fn(&p)
	cfg.Profiles[name] = p
	if err := SaveUserConfig(cfg); err != nil {
		return "", err
	}
	return name, nil
}

// ConfigDir returns the path to ~/.bank/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bank")
}

// ConfigPath returns the path to ~/.bank/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.bank/config.yaml.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// SaveUserConfig writes ~/.bank/config.yaml with owner-only permissions.
func SaveUserConfig(cfg *UserConfig) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
