package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-strand/strand/cmd/strand/internal/config"
	"github.com/go-strand/strand/cmd/strand/internal/icons"
	"github.com/go-strand/strand/cmd/strand/internal/templates"
)

func init() {
	RegisterCommand(&Command{
		Name:  "eject",
		Short: "Generate native iOS and Android projects",
		Long: `Eject the native projects for full customization.

Eject copies the bundled iOS and Android project templates into ./ios and
./android, substituting the project name and display name from app.json, and
generates launcher icons at every size each platform requires.

After ejecting, you can open the projects in Xcode (./ios) or Android Studio
(./android) and make changes that persist across builds.

Eject is one-shot: a platform directory that already exists is never touched.
If exactly one of ./ios and ./android exists, only the other is generated; if
both exist, eject fails. Delete a platform directory to re-eject it.`,
		Usage: "strand eject",
		Run:   runEject,
	})
}

func runEject(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("eject takes no arguments\n\nUsage: strand eject")
	}

	root, err := config.FindProjectRoot()
	if err != nil {
		return err
	}

	return ejectProject(root)
}

// ejectProject materializes the native projects under root. It is the
// filesystem-only portion of eject, safe to call from tests.
func ejectProject(root string) error {
	iosDir := filepath.Join(root, "ios")
	androidDir := filepath.Join(root, "android")

	// Check for existing platform directories first (fail fast)
	_, iosErr := os.Stat(iosDir)
	_, androidErr := os.Stat(androidDir)
	iosExists := iosErr == nil
	androidExists := androidErr == nil

	if iosExists && androidExists {
		return fmt.Errorf("both %s and %s already exist; delete one or both to eject again", iosDir, androidDir)
	}

	cfg, err := config.Resolve(root)
	if err != nil {
		return err
	}

	subst := templates.Substitution{
		Name:        cfg.Name,
		DisplayName: cfg.DisplayName,
		AppID:       cfg.AppID,
	}

	if iosExists {
		fmt.Printf("%s already exists, skipping iOS\n", iosDir)
	} else {
		if err := materializeIOS(root, cfg, subst); err != nil {
			return err
		}
		fmt.Printf("Ejected iOS to %s\n", iosDir)
	}

	if androidExists {
		fmt.Printf("%s already exists, skipping Android\n", androidDir)
	} else {
		if err := materializeAndroid(root, cfg, subst); err != nil {
			return err
		}
		fmt.Printf("Ejected Android to %s\n", androidDir)
	}

	fmt.Println()
	if !iosExists {
		fmt.Printf("Open in Xcode:\n  open %s\n", filepath.Join(iosDir, cfg.Name+".xcodeproj"))
	}
	if !androidExists {
		fmt.Printf("Open in Android Studio:\n  studio %s\n", androidDir)
	}
	fmt.Println()
	fmt.Println("Note: Changes to app.json will NOT affect ejected projects.")
	fmt.Println("To incorporate app.json changes, delete the platform directory and re-eject.")

	return nil
}

func materializeIOS(root string, cfg *config.Resolved, subst templates.Substitution) error {
	iosDir := filepath.Join(root, "ios")
	if err := templates.CopyTree(iosDir, "ios", subst); err != nil {
		return fmt.Errorf("failed to copy iOS template: %w", err)
	}

	src, ok := resolveIconSource(root, cfg, "ios")
	if !ok {
		return nil
	}

	appIconDir := filepath.Join(iosDir, cfg.Name, "Images.xcassets", "AppIcon.appiconset")
	generated, err := icons.GenerateIOS(appIconDir, src)
	if err != nil {
		return err
	}

	// Register the generated filenames only after every bitmap landed.
	return icons.PatchManifest(filepath.Join(appIconDir, "Contents.json"), generated)
}

func materializeAndroid(root string, cfg *config.Resolved, subst templates.Substitution) error {
	androidDir := filepath.Join(root, "android")
	if err := templates.CopyTree(androidDir, "android", subst); err != nil {
		return fmt.Errorf("failed to copy Android template: %w", err)
	}

	src, ok := resolveIconSource(root, cfg, "android")
	if !ok {
		return nil
	}

	resDir := filepath.Join(androidDir, "app", "src", "main", "res")
	return icons.GenerateAndroid(resDir, src)
}

// resolveIconSource returns the absolute icon source path for a platform.
// A platform with no configured icon, or whose source file does not exist,
// skips icon generation with a warning rather than failing the eject.
func resolveIconSource(root string, cfg *config.Resolved, platform string) (string, bool) {
	src := cfg.IconFor(platform)
	if src == "" {
		fmt.Fprintf(os.Stderr, "Warning: no icon configured for %s, keeping template icons\n", platform)
		return "", false
	}
	if !filepath.IsAbs(src) {
		src = filepath.Join(root, src)
	}
	if !icons.SourceExists(src) {
		fmt.Fprintf(os.Stderr, "Warning: icon source %s not found, skipping %s icons\n", src, platform)
		return "", false
	}
	return src, true
}
