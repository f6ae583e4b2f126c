// internal/config/config.go

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/models"
)

const (
	DefaultConfigFileName = "servers.json"
	DefaultConfigDir      = ".config/ixexplorer"
	DefaultFilePerms      = 0600
	BackupSuffix          = ".old"
)

// Manager loads and stores server profiles.
type Manager struct {
	configPath string
	config     *models.Config
}

// NewManager returns a manager for configPath, or for the default path when
// configPath is empty.
func NewManager(configPath string) *Manager {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err == nil {
			configPath = defaultPath
		} else {
			configPath = DefaultConfigFileName
		}
	}
	return &Manager{
		configPath: configPath,
		config:     &models.Config{},
	}
}

// Path returns the profile file path.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the profile file. A missing file yields an empty store.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.config = &models.Config{Servers: make([]models.Server, 0)}
			return nil
		}
		return apperr.New(apperr.ConfigError, "failed to read config file", err)
	}
	config := &models.Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return apperr.New(apperr.ConfigError, "failed to parse "+m.configPath, err)
	}
	m.config = config
	return nil
}

// Save writes the profile file, keeping the previous version next to it.
func (m *Manager) Save() error {
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return apperr.New(apperr.FileError, "failed to create config directory", err)
	}
	data, err := json.MarshalIndent(m.config, "", "    ")
	if err != nil {
		return apperr.New(apperr.ConfigError, "failed to marshal config", err)
	}
	if _, err := os.Stat(m.configPath); err == nil {
		if err := os.Rename(m.configPath, m.configPath+BackupSuffix); err != nil {
			return apperr.New(apperr.FileError, "failed to back up config file", err)
		}
	}
	if err := os.WriteFile(m.configPath, data, DefaultFilePerms); err != nil {
		return apperr.New(apperr.FileError, "failed to write config file", err)
	}
	return nil
}

// GetServers returns the profiles sorted by name.
func (m *Manager) GetServers() []models.Server {
	out := append([]models.Server(nil), m.config.Servers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddServer validates s and stores it, replacing a profile of the same name.
func (m *Manager) AddServer(s models.Server) error {
	if err := s.Validate(); err != nil {
		return apperr.New(apperr.ValidationError, "invalid server profile", err)
	}
	for i, existing := range m.config.Servers {
		if existing.Name == s.Name {
			m.config.Servers[i] = s
			return nil
		}
	}
	m.config.Servers = append(m.config.Servers, s)
	return nil
}

// DeleteServer removes the named profile.
func (m *Manager) DeleteServer(name string) error {
	for i, s := range m.config.Servers {
		if s.Name == name {
			m.config.Servers = append(m.config.Servers[:i], m.config.Servers[i+1:]...)
			return nil
		}
	}
	return apperr.Newf(apperr.ConfigError, "server %q not found", name)
}

// FindServerByName returns the named profile.
func (m *Manager) FindServerByName(name string) (models.Server, error) {
	for _, s := range m.config.Servers {
		if s.Name == name {
			return s, nil
		}
	}
	return models.Server{}, apperr.Newf(apperr.ConfigError, "server %q not found", name)
}

// GetDefaultConfigPath returns ~/.config/ixexplorer/servers.json.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFileName), nil
}
