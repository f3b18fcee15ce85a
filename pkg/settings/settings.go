// Package settings manages persistent user settings for the twinctl CLI.
//
// Settings only supply defaults: command-line flags win, and an unset
// setting falls back to a built-in value.
package settings

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// PathEnv overrides the settings file location.
const PathEnv = "TWINCTL_SETTINGS"

// Settings holds persistent user preferences
type Settings struct {
	// ConfigDir is where IXP configuration documents are stored
	ConfigDir string `json:"config_dir,omitempty"`

	// ResourcesDir holds expected RIB dumps and route server configs
	ResourcesDir string `json:"resources_dir,omitempty"`

	// SSHUser is the login used when fetching RIBs from route servers
	SSHUser string `json:"ssh_user,omitempty"`

	// RedisAddr is the APPL_DB address used by the redis route source
	RedisAddr string `json:"redis_addr,omitempty"`
}

// key describes one setting: its JSON name, storage, fallback and the
// check applied by Set.
type key struct {
	name     string
	field    func(*Settings) *string
	fallback string
	check    func(string) error
}

var keys = []key{
	{"config_dir", func(s *Settings) *string { return &s.ConfigDir }, "/etc/twinctl/ixpconfigs", absPath},
	{"resources_dir", func(s *Settings) *string { return &s.ResourcesDir }, "/etc/twinctl/resources", absPath},
	{"ssh_user", func(s *Settings) *string { return &s.SSHUser }, "root", noSpaces},
	{"redis_addr", func(s *Settings) *string { return &s.RedisAddr }, "127.0.0.1:6379", hostPort},
}

func lookup(name string) (key, bool) {
	for _, k := range keys {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// Keys lists the setting names accepted by Set, in display order.
func Keys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// DefaultSettingsPath returns $TWINCTL_SETTINGS, or ~/.twinctl/settings.json.
func DefaultSettingsPath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "twinctl_settings.json"
	}
	return filepath.Join(home, ".twinctl", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from path. A missing file yields empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
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

// SaveTo writes settings to path through a temporary file, so a failed
// write never leaves a truncated settings file behind.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Get returns the stored value of a setting, empty when unset.
func (s *Settings) Get(name string) (string, bool) {
	k, ok := lookup(name)
	if !ok {
		return "", false
	}
	return *k.field(s), true
}

// Effective returns the stored value of a setting or its fallback.
func (s *Settings) Effective(name string) string {
	k, ok := lookup(name)
	if !ok {
		return ""
	}
	if v := *k.field(s); v != "" {
		return v
	}
	return k.fallback
}

// Set assigns a setting by name. An empty value unsets it.
func (s *Settings) Set(name, value string) error {
	k, ok := lookup(name)
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %s)", name, strings.Join(Keys(), ", "))
	}
	if value != "" {
		if err := k.check(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	*k.field(s) = value
	return nil
}

func (s *Settings) GetConfigDir() string    { return s.Effective("config_dir") }
func (s *Settings) GetResourcesDir() string { return s.Effective("resources_dir") }
func (s *Settings) GetSSHUser() string      { return s.Effective("ssh_user") }
func (s *Settings) GetRedisAddr() string    { return s.Effective("redis_addr") }

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

func absPath(v string) error {
	if !filepath.IsAbs(v) {
		return fmt.Errorf("%q is not an absolute path", v)
	}
	return nil
}

func noSpaces(v string) error {
	if strings.ContainsAny(v, " \t") {
		return fmt.Errorf("%q contains whitespace", v)
	}
	return nil
}

func hostPort(v string) error {
	host, port, err := net.SplitHostPort(v)
	if err != nil {
		return err
	}
	if host == "" || port == "" {
		return fmt.Errorf("%q needs host and port", v)
	}
	return nil
}
