// Package scaffold provides the embedded starter manifest for new projects.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"solo/internal/decl"
	"solo/internal/manifest"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type templateData struct {
	Name   string
	Prefix string
}

// RenderManifest produces the starter solo.toml for a module name.
func RenderManifest(name string) ([]byte, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/solo.toml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse embedded template: %w", err)
	}
	var buf bytes.Buffer
	data := templateData{Name: name, Prefix: strings.ToUpper(name)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render manifest template: %w", err)
	}
	return buf.Bytes(), nil
}

// Init writes a starter manifest into dir, deriving the module name from the
// directory basename when name is empty. It refuses to clobber an existing
// manifest.
func Init(dir, name string) (string, error) {
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	} else if !st.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}

	if name == "" {
		name = sanitizeName(filepath.Base(dir))
	}
	if !decl.IsValidName(name) {
		return "", fmt.Errorf("%q is not a usable module name", name)
	}

	path := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("already initialized: %s exists", path)
	}

	content, err := RenderManifest(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// sanitizeName folds a directory basename into an identifier: dashes and
// dots become underscores, anything else invalid falls back to "solo_module".
func sanitizeName(base string) string {
	base = strings.TrimSpace(base)
	base = strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ' ':
			return '_'
		}
		return r
	}, base)
	if !decl.IsValidName(base) {
		return "solo_module"
	}
	return base
}
