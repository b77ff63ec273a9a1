package config

import (
	"fmt"
	"strings"

	"cljblock/internal/codeblock"
	"cljblock/internal/errx"
)

// MissingSettingsError names the settings a language needs that are empty.
type MissingSettingsError struct {
	Language codeblock.Language
	Keys     []string
}

func (e *MissingSettingsError) Error() string {
	return fmt.Sprintf("%s blocks need %s set (run: cljblock config set %s <path>)",
		e.Language, strings.Join(e.Keys, " and "), e.Keys[0])
}

func (e *MissingSettingsError) Unwrap() error { return errx.ErrMissingSettings }

// RequiredKeys returns the settings that must be non-empty to run lang.
func RequiredKeys(lang codeblock.Language) []string {
	switch lang {
	case codeblock.Clojure:
		return []string{KeyBBPath}
	case codeblock.ClojureScript:
		return []string{KeyNBBPath, KeyNodePath}
	default:
		return nil
	}
}

// Validate reports whether cfg has every path lang needs. Settings used only
// by the other language are not looked at.
func Validate(lang codeblock.Language, cfg Config) error {
	required := RequiredKeys(lang)
	if required == nil {
		return fmt.Errorf("unsupported language: %q", lang)
	}

	values := map[string]string{
		KeyBBPath:   cfg.BBPath,
		KeyNBBPath:  cfg.NBBPath,
		KeyNodePath: cfg.NodePath,
	}
	var missing []string
	for _, k := range required {
		if strings.TrimSpace(values[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingSettingsError{Language: lang, Keys: missing}
	}
	return nil
}
