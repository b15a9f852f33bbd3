// Package config loads and validates the project configuration for eject.
//
// The required configuration lives in app.json at the project root. An
// optional strand.yaml may override the derived application identifier.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// App represents the app.json configuration file.
type App struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Icon        json.RawMessage `json:"icon,omitempty"`
}

// Icon holds the per-platform icon source paths after normalization.
// A plain string in app.json is equivalent to {"default": <string>}.
type Icon struct {
	IOS     string `json:"ios,omitempty"`
	Android string `json:"android,omitempty"`
	Default string `json:"default,omitempty"`
}

// Overrides represents the optional strand.yaml configuration.
type Overrides struct {
	App struct {
		ID string `yaml:"id,omitempty"`
	} `yaml:"app"`
}

// Resolved contains resolved configuration values for a single eject run.
type Resolved struct {
	Root        string
	Name        string
	DisplayName string
	AppID       string
	Icon        Icon
}

// IconFor returns the icon source path for the given platform, falling back
// to the default entry. An empty result means no icon is configured.
func (r *Resolved) IconFor(platform string) string {
	switch platform {
	case "ios":
		if r.Icon.IOS != "" {
			return r.Icon.IOS
		}
	case "android":
		if r.Icon.Android != "" {
			return r.Icon.Android
		}
	}
	return r.Icon.Default
}

// Resolve loads app.json (required) and strand.yaml (optional) from dir and
// resolves derived values. Validation is fail-fast: the first missing or
// invalid field produces an error and nothing else is checked.
func Resolve(dir string) (*Resolved, error) {
	app, err := loadApp(dir)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(app.Name)
	if name == "" {
		return nil, fmt.Errorf("app.json must contain a non-empty \"name\" field")
	}

	displayName := strings.TrimSpace(app.DisplayName)
	if displayName == "" {
		return nil, fmt.Errorf("app.json must contain a non-empty \"displayName\" field")
	}

	icon, err := normalizeIcon(app.Icon)
	if err != nil {
		return nil, err
	}

	overrides, err := loadOverrides(dir)
	if err != nil {
		return nil, err
	}

	appID := strings.TrimSpace(overrides.App.ID)
	if appID == "" {
		appID = defaultAppID(dir, name)
	}
	if err := validateAppID(appID); err != nil {
		return nil, err
	}

	return &Resolved{
		Root:        dir,
		Name:        name,
		DisplayName: displayName,
		AppID:       appID,
		Icon:        icon,
	}, nil
}

// FindProjectRoot walks up from the current directory to find app.json.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "app.json")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a strand project (no app.json found)")
		}
		dir = parent
	}
}

func loadApp(dir string) (*App, error) {
	path := filepath.Join(dir, "app.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no app.json found at %s", path)
		}
		return nil, fmt.Errorf("failed to read app.json: %w", err)
	}

	var app App
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("failed to parse app.json: %w", err)
	}

	return &app, nil
}

// normalizeIcon converts the polymorphic icon field (string or object) into
// a canonical Icon value. An absent field yields the zero Icon.
func normalizeIcon(raw json.RawMessage) (Icon, error) {
	if len(raw) == 0 {
		return Icon{}, nil
	}

	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		return Icon{Default: path}, nil
	}

	var icon Icon
	if err := json.Unmarshal(raw, &icon); err != nil {
		return Icon{}, fmt.Errorf("app.json \"icon\" must be a string or an object with ios/android/default keys: %w", err)
	}
	return icon, nil
}

// loadOverrides reads strand.yaml if present.
func loadOverrides(dir string) (*Overrides, error) {
	path := filepath.Join(dir, "strand.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Overrides{}, nil
		}
		return nil, fmt.Errorf("failed to read strand.yaml: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse strand.yaml: %w", err)
	}

	return &o, nil
}

// defaultAppID derives a reverse-DNS application identifier from the
// project's go.mod module path, falling back to com.example.<name> when the
// module path carries no host component (or there is no go.mod at all).
func defaultAppID(dir, appName string) string {
	modulePath := readModulePath(dir)
	parts := strings.Split(modulePath, "/")
	if len(parts) < 2 || !strings.Contains(parts[0], ".") {
		return fmt.Sprintf("com.example.%s", sanitizeSegment(appName, true))
	}

	host := strings.Split(parts[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	var pathParts []string
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		pathParts = append(pathParts, p)
	}

	segments := append(host, pathParts...)
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment, i > 0)
	}

	return strings.Join(segments, ".")
}

func readModulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return ""
	}
	if name, _, ok := module.SplitPathVersion(path); ok {
		return name
	}
	return path
}

func sanitizeSegment(segment string, allowLeadingDigit bool) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		segment = "app"
	}

	var out []rune
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= '0' && r <= '9':
			out = append(out, r)
		case r == '_' || r == '-':
			// Skip hyphens and underscores - they are not valid in
			// Android package segments or iOS bundle identifiers
		default:
			// Skip other invalid characters
		}
	}

	if len(out) == 0 {
		out = []rune("app")
	}

	if !allowLeadingDigit && out[0] >= '0' && out[0] <= '9' {
		out = append([]rune{'a'}, out...)
	}

	return string(out)
}

func validateAppID(appID string) error {
	if !strings.Contains(appID, ".") {
		return fmt.Errorf("app.id must contain at least one '.' (got %q)", appID)
	}
	segments := strings.Split(appID, ".")
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("app.id contains an empty segment (%q)", appID)
		}
		if segment[0] >= '0' && segment[0] <= '9' {
			return fmt.Errorf("app.id segments cannot start with a digit (%q)", appID)
		}
		if segment[0] == '_' {
			return fmt.Errorf("app.id segments cannot start with '_' (%q)", appID)
		}
		for _, r := range segment {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				return fmt.Errorf("app.id contains invalid character %q in %q", r, appID)
			}
		}
	}
	return nil
}
