package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Target   TargetConfig   `toml:"target"`
	Probe    ProbeConfig    `toml:"probe"`
	Resolver ResolverConfig `toml:"resolver"`
	Server   ServerConfig   `toml:"server"`
}

type TargetConfig struct {
	// Default is the endpoint probed when none is given on the command
	// line. badssl.com serves a chain anchored in a deliberately
	// untrusted root, which is exactly what the demonstration needs.
	Default string `toml:"default"`
}

type ProbeConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Interpreters are tried in order; absolute paths cover known
	// deployment layouts, bare names fall back to PATH.
	Interpreters []string `toml:"interpreters"`

	// ScriptDirs are tried in order: production deployment path first,
	// then local-development locations.
	ScriptDirs []string `toml:"script_dirs"`
}

type ResolverConfig struct {
	Port           int `toml:"port"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
	ListenPort int    `toml:"listen_port"`
}

func Defaults() *Config {
	return &Config{
		Target: TargetConfig{Default: "untrusted-root.badssl.com"},
		Probe: ProbeConfig{
			TimeoutSeconds: 30,
			Interpreters: []string{
				`D:\home\python364x64\python.exe`,
				`D:\home\python354x64\python.exe`,
				"python3",
				"python",
			},
			ScriptDirs: []string{
				`D:\home\site\wwwroot\scripts`,
				"scripts",
				"../scripts",
			},
		},
		Resolver: ResolverConfig{Port: 443, TimeoutSeconds: 10},
		Server:   ServerConfig{ListenAddr: "127.0.0.1", ListenPort: 8080},
	}
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ProbeTimeout returns the probe ceiling as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}

// ResolverTimeout returns the connect+handshake bound as a duration.
func (c *Config) ResolverTimeout() time.Duration {
	return time.Duration(c.Resolver.TimeoutSeconds) * time.Second
}
