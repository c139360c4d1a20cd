package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves user-visible copy for one language. Every string
// the widget shows (greeting, crisis resources, canned failure replies,
// the consent prompt) goes through here.
type Translator struct {
	translations map[string]string
	policyText   string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
	}

	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}

	policyPath := filepath.Join("locales", fmt.Sprintf("policy-%s.txt", langCode))
	policyBytes, err := fs.ReadFile(fsys, policyPath)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", policyPath, err)
	}
	t.policyText = string(policyBytes)
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the formatted string for key, or the key itself when missing
// so a forgotten entry is visible instead of blank.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Policy returns the privacy policy text shown with the consent prompt.
func (t *Translator) Policy() string {
	return t.policyText
}
