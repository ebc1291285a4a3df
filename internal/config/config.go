package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Terminal TerminalConfig `yaml:"terminal"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Search   SearchConfig   `yaml:"search"`
	Lookup   LookupConfig   `yaml:"lookup"`
	History  HistoryConfig  `yaml:"history"`
	Eval     EvalConfig     `yaml:"eval"`
}

type TerminalConfig struct {
	// Command launches a terminal running the rest of the action,
	// e.g. "urxvt -e" or "alacritty -e".
	Command string `yaml:"command"`
	Editor  string `yaml:"editor"`
	Shell   string `yaml:"shell"`
}

type PipelineConfig struct {
	MaxCandidates int `yaml:"max_candidates"`
}

type SearchConfig struct {
	Root       string        `yaml:"root"`
	MaxDepth   int           `yaml:"max_depth"`
	MaxMatches int           `yaml:"max_matches"`
	Delay      time.Duration `yaml:"delay"`
}

type LookupConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Opener   string        `yaml:"opener"`
	Delay    time.Duration `yaml:"delay"`
	Timeout  time.Duration `yaml:"timeout"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
	Max  int    `yaml:"max"`
}

type EvalConfig struct {
	Enabled bool          `yaml:"enabled"`
	Repl    string        `yaml:"repl"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration, used when no config file is
// found and as the base the file is merged over.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Terminal: TerminalConfig{
			Command: "urxvt -e",
			Editor:  "nvim",
			Shell:   "zsh",
		},
		Pipeline: PipelineConfig{
			MaxCandidates: 5,
		},
		Search: SearchConfig{
			Root:       home,
			MaxDepth:   4,
			MaxMatches: 5,
			Delay:      500 * time.Millisecond,
		},
		Lookup: LookupConfig{
			Endpoint: "https://api.duckduckgo.com/",
			Opener:   "xdg-open",
			Delay:    500 * time.Millisecond,
			Timeout:  10 * time.Second,
		},
		History: HistoryConfig{
			Path: filepath.Join(home, ".local", "share", "beacon", "history.log"),
			Max:  3,
		},
		Eval: EvalConfig{
			Enabled: true,
			Repl:    "yaegi",
			Timeout: 2 * time.Second,
		},
	}
}

// Load reads the config file at path, or discovers one when path is empty:
// ~/.config/beacon/beacon.yaml first, then ./beacon.yaml. It returns the
// config and the path it was read from ("" when running on defaults).
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = discover()
		if path == "" {
			return Default(), "", nil
		}
	}
	cfg, err := read(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func discover() string {
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "beacon", "beacon.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if _, err := os.Stat("beacon.yaml"); err == nil {
		return "beacon.yaml"
	}
	return ""
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}
	return cfg, nil
}
