package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kballard/go-shellquote"

	"cljblock/internal/codeblock"
	"cljblock/internal/config"
)

// EnvFileName is read from the working directory and added to the
// interpreter environment when present.
const EnvFileName = ".env"

// Invocation is a fully resolved interpreter command.
type Invocation struct {
	Language codeblock.Language
	Name     string
	Args     []string
	Dir      string
	Env      []string
}

// String renders the command as a shell-quoted line, for logs and dry runs.
func (inv Invocation) String() string {
	return shellquote.Join(append([]string{inv.Name}, inv.Args...)...)
}

// BuildInvocation resolves the interpreter command for block. cfg must have
// passed config.Validate for the block's language. root is the note
// collection root; the configured working dir is resolved against it.
//
// The source is passed as one argv element and never goes through a shell.
func BuildInvocation(block codeblock.Block, cfg config.Config, root string) (Invocation, error) {
	var argv []string
	switch block.Language {
	case codeblock.Clojure:
		bb, err := splitSetting(config.KeyBBPath, cfg.BBPath)
		if err != nil {
			return Invocation{}, err
		}
		argv = append(bb, "-e", block.Source)
	case codeblock.ClojureScript:
		node, err := splitSetting(config.KeyNodePath, cfg.NodePath)
		if err != nil {
			return Invocation{}, err
		}
		nbb, err := splitSetting(config.KeyNBBPath, cfg.NBBPath)
		if err != nil {
			return Invocation{}, err
		}
		argv = append(append(node, nbb...), "-e", block.Source)
	default:
		return Invocation{}, fmt.Errorf("unsupported language: %q", block.Language)
	}

	dir := strings.TrimSpace(root)
	if dir == "" {
		dir = "."
	}
	if wd := strings.TrimSpace(cfg.WorkingDir); wd != "" {
		if filepath.IsAbs(wd) {
			dir = wd
		} else {
			dir = filepath.Join(dir, wd)
		}
	}

	env, err := environ(dir)
	if err != nil {
		return Invocation{}, err
	}

	return Invocation{
		Language: block.Language,
		Name:     argv[0],
		Args:     argv[1:],
		Dir:      dir,
		Env:      env,
	}, nil
}

// splitSetting splits a tool path setting with shell word rules so a setting
// like `bb --classpath src` works. Quote paths containing spaces.
func splitSetting(key, value string) ([]string, error) {
	parts, err := shellquote.Split(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s is empty", key)
	}
	return parts, nil
}

func environ(dir string) ([]string, error) {
	env := os.Environ()
	vars, err := godotenv.Read(filepath.Join(dir, EnvFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return env, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Join(dir, EnvFileName), err)
	}
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env, nil
}
