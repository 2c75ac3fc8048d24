// Package settings manages persistent user settings for the hsnaddr CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
)

// Defaults used when a setting is not set
const (
	DefaultMachineName = "frontier"
	DefaultKeyFile     = "./dragonfly_topo.txt"
	DefaultRegistry    = "127.0.0.1:6379"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultClass is the switch class used when none is given on the
	// command line, e.g. "2" or "class3"
	DefaultClass string `json:"default_class,omitempty"`

	// ProbeConfig is a YAML probe configuration file
	ProbeConfig string `json:"probe_config,omitempty"`

	// RegistryAddr is the Redis address of the address registry
	RegistryAddr string `json:"registry_addr,omitempty"`

	// RegistrySSHHost reaches the registry through an SSH tunnel
	RegistrySSHHost string `json:"registry_ssh_host,omitempty"`
	RegistrySSHUser string `json:"registry_ssh_user,omitempty"`

	// MachineName prefixes node names in placement output
	MachineName string `json:"machine_name,omitempty"`

	// KeyFile is the diagnostic output read by the placement planner
	KeyFile string `json:"key_file,omitempty"`
}

// Names lists the settable keys in display order.
var Names = []string{
	"default_class",
	"probe_config",
	"registry_addr",
	"registry_ssh_host",
	"registry_ssh_user",
	"machine_name",
	"key_file",
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hsnaddr_settings.json"
	}
	return filepath.Join(home, ".hsnaddr", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (s *Settings) field(name string) (*string, error) {
	switch strings.ReplaceAll(name, "-", "_") {
	case "default_class", "class":
		return &s.DefaultClass, nil
	case "probe_config", "config":
		return &s.ProbeConfig, nil
	case "registry_addr", "registry":
		return &s.RegistryAddr, nil
	case "registry_ssh_host":
		return &s.RegistrySSHHost, nil
	case "registry_ssh_user":
		return &s.RegistrySSHUser, nil
	case "machine_name", "machine":
		return &s.MachineName, nil
	case "key_file", "key":
		return &s.KeyFile, nil
	}
	return nil, fmt.Errorf("unknown setting: %s (valid: %s)", name, strings.Join(Names, ", "))
}

// Get returns a setting by name. Unset settings return "".
func (s *Settings) Get(name string) (string, error) {
	f, err := s.field(name)
	if err != nil {
		return "", err
	}
	return *f, nil
}

// Set updates a setting by name. default_class is validated.
func (s *Settings) Set(name, value string) error {
	f, err := s.field(name)
	if err != nil {
		return err
	}
	if f == &s.DefaultClass && value != "" {
		if _, err := logaddr.ParseSwitchClass(value); err != nil {
			return err
		}
	}
	*f = value
	return nil
}

// GetClass returns the default switch class (with fallback)
func (s *Settings) GetClass() (logaddr.SwitchClass, error) {
	if s.DefaultClass == "" {
		return logaddr.DefaultClass, nil
	}
	return logaddr.ParseSwitchClass(s.DefaultClass)
}

// GetMachineName returns the machine name (with fallback)
func (s *Settings) GetMachineName() string {
	if s.MachineName != "" {
		return s.MachineName
	}
	return DefaultMachineName
}

// GetKeyFile returns the key file path (with fallback)
func (s *Settings) GetKeyFile() string {
	if s.KeyFile != "" {
		return s.KeyFile
	}
	return DefaultKeyFile
}

// GetRegistryAddr returns the registry address (with fallback)
func (s *Settings) GetRegistryAddr() string {
	if s.RegistryAddr != "" {
		return s.RegistryAddr
	}
	return DefaultRegistry
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
