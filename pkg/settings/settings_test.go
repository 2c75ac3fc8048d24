package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	class, err := s.GetClass()
	if err != nil {
		t.Fatalf("GetClass() default error = %v", err)
	}
	if class != logaddr.Class2 {
		t.Errorf("GetClass() default = %s, want class2", class)
	}
	if got := s.GetMachineName(); got != "frontier" {
		t.Errorf("GetMachineName() default = %q", got)
	}
	if got := s.GetKeyFile(); got != "./dragonfly_topo.txt" {
		t.Errorf("GetKeyFile() default = %q", got)
	}
	if got := s.GetRegistryAddr(); got != "127.0.0.1:6379" {
		t.Errorf("GetRegistryAddr() default = %q", got)
	}
}

func TestSettings_SetGet(t *testing.T) {
	s := &Settings{}

	tests := []struct {
		name  string
		value string
		field *string
	}{
		{"default_class", "3", &s.DefaultClass},
		{"class", "class4", &s.DefaultClass},
		{"probe_config", "/etc/hsnaddr/probes.yaml", &s.ProbeConfig},
		{"registry", "mgmt1:6379", &s.RegistryAddr},
		{"registry-ssh-host", "mgmt1", &s.RegistrySSHHost},
		{"registry_ssh_user", "admin", &s.RegistrySSHUser},
		{"machine", "crusher", &s.MachineName},
		{"key_file", "/tmp/topo.txt", &s.KeyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Set(tt.name, tt.value); err != nil {
				t.Fatalf("Set(%q) error = %v", tt.name, err)
			}
			if *tt.field != tt.value {
				t.Errorf("field after Set(%q) = %q", tt.name, *tt.field)
			}
			got, err := s.Get(tt.name)
			if err != nil || got != tt.value {
				t.Errorf("Get(%q) = (%q, %v)", tt.name, got, err)
			}
		})
	}

	class, err := s.GetClass()
	if err != nil || class != logaddr.Class4 {
		t.Errorf("GetClass() = (%s, %v), want class4", class, err)
	}
}

func TestSettings_SetErrors(t *testing.T) {
	s := &Settings{}

	if err := s.Set("network", "x"); err == nil {
		t.Error("Set() unknown setting should error")
	}
	if _, err := s.Get("network"); err == nil {
		t.Error("Get() unknown setting should error")
	}

	err := s.Set("default_class", "7")
	if !errors.Is(err, logaddr.ErrUnrecognizedClass) {
		t.Errorf("Set(default_class, 7) error = %v, want ErrUnrecognizedClass", err)
	}
	if s.DefaultClass != "" {
		t.Errorf("rejected class was stored: %q", s.DefaultClass)
	}

	// Clearing a single setting is allowed
	if err := s.Set("default_class", ""); err != nil {
		t.Errorf("Set(default_class, \"\") error = %v", err)
	}
}

func TestSettings_BadStoredClass(t *testing.T) {
	s := &Settings{DefaultClass: "mountain"}
	if _, err := s.GetClass(); err == nil {
		t.Error("GetClass() with bad stored class should error")
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		DefaultClass: "0",
		ProbeConfig:  "/path",
		MachineName:  "crusher",
		KeyFile:      "key",
	}

	s.Clear()

	if *s != (Settings{}) {
		t.Error("Clear() should reset all fields to empty")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		DefaultClass:    "3",
		ProbeConfig:     "/etc/hsnaddr/probes.yaml",
		RegistryAddr:    "10.1.0.1:6379",
		RegistrySSHHost: "mgmt1",
		RegistrySSHUser: "admin",
		MachineName:     "frontier",
		KeyFile:         "/lustre/topo.txt",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("LoadFrom() = %+v, want %+v", *loaded, *original)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	// Load from non-existent path should return empty settings
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil {
		t.Fatal("LoadFrom() should return non-nil Settings")
	}
	if s.DefaultClass != "" || s.KeyFile != "" {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{MachineName: "test"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestLoadSaveHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() with non-existent file should not error: %v", err)
	}
	if s.DefaultClass != "" {
		t.Error("Load() with non-existent file should return empty settings")
	}

	s.DefaultClass = "1"
	if err := s.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	expectedPath := filepath.Join(home, ".hsnaddr", "settings.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Save() did not create file at %s", expectedPath)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if loaded.DefaultClass != "1" {
		t.Errorf("After Save(), DefaultClass = %q, want %q", loaded.DefaultClass, "1")
	}
}

func TestDefaultSettingsPath_NoHome(t *testing.T) {
	t.Setenv("HOME", "")

	path := DefaultSettingsPath()
	if path != "hsnaddr_settings.json" {
		t.Errorf("DefaultSettingsPath() with no HOME = %q, want %q", path, "hsnaddr_settings.json")
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	// A directory where the file should be causes "is a directory"
	dirAsFile := filepath.Join(t.TempDir(), "settings.json")
	if err := os.Mkdir(dirAsFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := LoadFrom(dirAsFile); err == nil {
		t.Error("LoadFrom() should error when path is a directory")
	}
}

func TestSaveTo_MkdirError(t *testing.T) {
	// A file where a directory should be makes MkdirAll fail
	blockingFile := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blockingFile, []byte("blocking"), 0644); err != nil {
		t.Fatalf("Failed to create blocking file: %v", err)
	}

	s := &Settings{MachineName: "test"}
	if err := s.SaveTo(filepath.Join(blockingFile, "subdir", "settings.json")); err == nil {
		t.Error("SaveTo() should fail when directory creation fails")
	}
}
