package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Setting keys, as they appear in the config file and in `config set`.
const (
	KeyBBPath      = "bb_path"
	KeyNBBPath     = "nbb_path"
	KeyNodePath    = "node_path"
	KeyWorkingDir  = "working_dir"
	KeyLimitOutput = "limit_output"
)

// Keys lists every setting in display order.
var Keys = []string{KeyBBPath, KeyNBBPath, KeyNodePath, KeyWorkingDir, KeyLimitOutput}

// Config is the persisted settings record. Paths are not checked when saved;
// Validate checks the ones a language needs right before execution.
type Config struct {
	// BBPath is the babashka executable used for clojure blocks.
	BBPath string `yaml:"bb_path" toml:"bb_path"`

	// NBBPath is the nbb script run by node for clojurescript blocks.
	NBBPath string `yaml:"nbb_path" toml:"nbb_path"`

	// NodePath is the node executable used to run nbb.
	NodePath string `yaml:"node_path" toml:"node_path"`

	// WorkingDir is the interpreter working directory, relative to the note
	// collection root. Empty means the root itself.
	WorkingDir string `yaml:"working_dir" toml:"working_dir"`

	// LimitOutput truncates long interpreter output before it is inserted.
	LimitOutput bool `yaml:"limit_output" toml:"limit_output"`
}

// Defaults returns the values used for keys missing from the config file.
func Defaults() Config {
	return Config{LimitOutput: true}
}

// Store loads and saves config.
type Store interface {
	Load(ctx context.Context) (Config, error)
	Save(ctx context.Context, cfg Config) error
}

// FileStore is a filesystem-backed config store. Files ending in .toml are
// TOML; anything else is YAML.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the config file and merges it over Defaults. A missing file is
// not an error.
func (s *FileStore) Load(ctx context.Context) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", s.Path, err)
	}

	// Decoding into a prefilled struct leaves absent keys at their defaults.
	if s.isTOML() {
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", s.Path, err)
		}
	} else if len(bytes.TrimSpace(b)) > 0 {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", s.Path, err)
		}
	}
	return cfg, nil
}

func (s *FileStore) Save(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("config path is empty")
	}

	var buf bytes.Buffer
	if s.isTOML() {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create config dir %s: %w", filepath.Dir(s.Path), err)
	}

	// Temp file in the same dir, then rename into place.
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".config-*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write config %s: %w", s.Path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod config %s: %w", s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config %s: %w", s.Path, err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("write config %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileStore) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".toml")
}

// Set applies a single settings edit and returns the updated config.
func Set(cfg Config, key, value string) (Config, error) {
	switch key {
	case KeyBBPath:
		cfg.BBPath = value
	case KeyNBBPath:
		cfg.NBBPath = value
	case KeyNodePath:
		cfg.NodePath = value
	case KeyWorkingDir:
		cfg.WorkingDir = value
	case KeyLimitOutput:
		v, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return cfg, fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		cfg.LimitOutput = v
	default:
		return cfg, fmt.Errorf("unknown setting %q (expected one of %s)", key, strings.Join(Keys, ", "))
	}
	return cfg, nil
}

// Field is one key/value pair for display.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Fields returns the settings in Keys order.
func Fields(cfg Config) []Field {
	return []Field{
		{KeyBBPath, cfg.BBPath},
		{KeyNBBPath, cfg.NBBPath},
		{KeyNodePath, cfg.NodePath},
		{KeyWorkingDir, cfg.WorkingDir},
		{KeyLimitOutput, strconv.FormatBool(cfg.LimitOutput)},
	}
}
