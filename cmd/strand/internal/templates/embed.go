// Package templates provides the embedded native project templates and the
// copy-and-substitute operation that materializes them.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:ios all:android
var FS embed.FS

// Placeholder tokens used throughout the template trees, in file and
// directory names as well as file contents.
const (
	namePlaceholder    = "HelloWorld"
	lowerPlaceholder   = "helloworld"
	displayPlaceholder = "Hello App Display Name"
	appIDPlaceholder   = "com.helloworld"
)

// Substitution holds the values written into a template tree.
type Substitution struct {
	Name        string // project name, e.g. "MyApp"
	DisplayName string // home-screen label, e.g. "My App"
	AppID       string // application/bundle identifier, e.g. "com.example.myapp"
}

// binaryExts lists extensions copied byte-for-byte, with no substitution.
var binaryExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".jar":  true,
	".ttf":  true,
	".otf":  true,
}

// CopyTree copies the embedded template tree rooted at treeRoot ("ios" or
// "android") into destDir, applying subst to every relative path and to the
// contents of every text file. destDir is created if needed.
func CopyTree(destDir, treeRoot string, subst Substitution) error {
	return fs.WalkDir(FS, treeRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := strings.TrimPrefix(p, treeRoot)
		rel = strings.TrimPrefix(rel, "/")
		dest := filepath.Join(destDir, filepath.FromSlash(substitutePath(rel, subst)))

		if d.IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dest, err)
			}
			return nil
		}

		content, err := FS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}

		if !binaryExts[path.Ext(p)] {
			content = []byte(substituteContent(string(content), subst))
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return nil
	})
}

// substitutePath rewrites placeholder tokens in a slash-separated relative
// path. The app-id path placeholder is handled first so that the generic
// lowercase token does not split it.
func substitutePath(rel string, subst Substitution) string {
	rel = strings.ReplaceAll(rel, "com/helloworld", strings.ReplaceAll(subst.AppID, ".", "/"))
	rel = strings.ReplaceAll(rel, namePlaceholder, subst.Name)
	rel = strings.ReplaceAll(rel, lowerPlaceholder, strings.ToLower(subst.Name))
	return rel
}

func substituteContent(s string, subst Substitution) string {
	s = strings.ReplaceAll(s, appIDPlaceholder, subst.AppID)
	s = strings.ReplaceAll(s, displayPlaceholder, subst.DisplayName)
	s = strings.ReplaceAll(s, namePlaceholder, subst.Name)
	s = strings.ReplaceAll(s, lowerPlaceholder, strings.ToLower(subst.Name))
	return s
}

// ListFiles returns all files in the embedded filesystem under the given path.
func ListFiles(root string) ([]string, error) {
	var files []string

	err := fs.WalkDir(FS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})

	return files, err
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(path string) ([]byte, error) {
	return FS.ReadFile(path)
}
