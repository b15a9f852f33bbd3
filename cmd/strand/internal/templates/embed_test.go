package templates

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

var testSubst = Substitution{
	Name:        "ShipIt",
	DisplayName: "Ship It!",
	AppID:       "org.acme.shipit",
}

func TestCopyTree_IOS(t *testing.T) {
	dir := t.TempDir()

	if err := CopyTree(dir, "ios", testSubst); err != nil {
		t.Fatalf("CopyTree(ios) unexpected error: %v", err)
	}

	// Project directory and xcodeproj are renamed after the project
	for _, p := range []string{
		"ShipIt/Info.plist",
		"ShipIt/AppDelegate.swift",
		"ShipIt/LaunchScreen.storyboard",
		"ShipIt/Images.xcassets/AppIcon.appiconset/Contents.json",
		"ShipIt.xcodeproj/project.pbxproj",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p))); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}

	plist, err := os.ReadFile(filepath.Join(dir, "ShipIt", "Info.plist"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(plist), "<string>Ship It!</string>") {
		t.Error("Info.plist should contain the display name")
	}
	if !strings.Contains(string(plist), "<string>org.acme.shipit</string>") {
		t.Error("Info.plist should contain the app id as bundle identifier")
	}

	pbxproj, err := os.ReadFile(filepath.Join(dir, "ShipIt.xcodeproj", "project.pbxproj"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pbxproj), "PRODUCT_BUNDLE_IDENTIFIER = \"org.acme.shipit\"") {
		t.Error("project.pbxproj should contain the substituted bundle identifier")
	}
}

func TestCopyTree_Android(t *testing.T) {
	dir := t.TempDir()

	if err := CopyTree(dir, "android", testSubst); err != nil {
		t.Fatalf("CopyTree(android) unexpected error: %v", err)
	}

	// The Kotlin source moves to the app-id package directory
	activity, err := os.ReadFile(filepath.Join(dir, "app", "src", "main", "java", "org", "acme", "shipit", "MainActivity.kt"))
	if err != nil {
		t.Fatalf("MainActivity.kt should exist under the app-id package path: %v", err)
	}
	if !strings.Contains(string(activity), "package org.acme.shipit") {
		t.Error("MainActivity.kt should declare the substituted package")
	}

	gradle, err := os.ReadFile(filepath.Join(dir, "app", "build.gradle"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gradle), "applicationId 'org.acme.shipit'") {
		t.Error("app/build.gradle should contain the substituted applicationId")
	}

	strs, err := os.ReadFile(filepath.Join(dir, "app", "src", "main", "res", "values", "strings.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(strs), ">Ship It!<") {
		t.Error("strings.xml should contain the display name")
	}
}

func TestCopyTree_NoPlaceholdersRemain(t *testing.T) {
	for _, tree := range []string{"ios", "android"} {
		t.Run(tree, func(t *testing.T) {
			dir := t.TempDir()
			if err := CopyTree(dir, tree, testSubst); err != nil {
				t.Fatalf("CopyTree(%s) unexpected error: %v", tree, err)
			}

			err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				rel, _ := filepath.Rel(dir, p)
				for _, token := range []string{namePlaceholder, lowerPlaceholder} {
					if strings.Contains(rel, token) {
						t.Errorf("path %s still contains placeholder %q", rel, token)
					}
				}
				if d.IsDir() || binaryExts[filepath.Ext(p)] {
					return nil
				}
				content, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				for _, token := range []string{namePlaceholder, lowerPlaceholder, displayPlaceholder} {
					if bytes.Contains(content, []byte(token)) {
						t.Errorf("%s still contains placeholder %q", rel, token)
					}
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCopyTree_BinaryFilesCopiedVerbatim(t *testing.T) {
	dir := t.TempDir()

	if err := CopyTree(dir, "android", testSubst); err != nil {
		t.Fatalf("CopyTree(android) unexpected error: %v", err)
	}

	want, err := ReadFile("android/app/src/main/res/mipmap-mdpi/ic_launcher.png")
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "app", "src", "main", "res", "mipmap-mdpi", "ic_launcher.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("placeholder launcher icon should be copied byte-for-byte")
	}
}

func TestListFiles_TemplateInventory(t *testing.T) {
	tests := []struct {
		tree string
		want []string
	}{
		{
			tree: "ios",
			want: []string{
				"ios/HelloWorld.xcodeproj/project.pbxproj",
				"ios/HelloWorld/AppDelegate.swift",
				"ios/HelloWorld/Images.xcassets/AppIcon.appiconset/Contents.json",
				"ios/HelloWorld/Images.xcassets/Contents.json",
				"ios/HelloWorld/Info.plist",
				"ios/HelloWorld/LaunchScreen.storyboard",
				"ios/HelloWorld/StrandViewController.swift",
			},
		},
		{
			tree: "android",
			want: []string{
				"android/app/build.gradle",
				"android/app/src/main/AndroidManifest.xml",
				"android/app/src/main/java/com/helloworld/MainActivity.kt",
				"android/app/src/main/res/mipmap-hdpi/ic_launcher.png",
				"android/app/src/main/res/mipmap-mdpi/ic_launcher.png",
				"android/app/src/main/res/mipmap-xhdpi/ic_launcher.png",
				"android/app/src/main/res/mipmap-xxhdpi/ic_launcher.png",
				"android/app/src/main/res/values/strings.xml",
				"android/app/src/main/res/values/styles.xml",
				"android/build.gradle",
				"android/gradle.properties",
				"android/settings.gradle",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.tree, func(t *testing.T) {
			files, err := ListFiles(tt.tree)
			if err != nil {
				t.Fatalf("ListFiles(%s) unexpected error: %v", tt.tree, err)
			}
			sort.Strings(files)

			if len(files) != len(tt.want) {
				t.Fatalf("ListFiles(%s) returned %d files, want %d:\n%v", tt.tree, len(files), len(tt.want), files)
			}
			for i, want := range tt.want {
				if files[i] != want {
					t.Errorf("ListFiles(%s)[%d] = %q, want %q", tt.tree, i, files[i], want)
				}
			}
		})
	}
}

func TestSubstitutePath(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"HelloWorld/Info.plist", "ShipIt/Info.plist"},
		{"HelloWorld.xcodeproj/project.pbxproj", "ShipIt.xcodeproj/project.pbxproj"},
		{"app/src/main/java/com/helloworld/MainActivity.kt", "app/src/main/java/org/acme/shipit/MainActivity.kt"},
		{"app/build.gradle", "app/build.gradle"},
	}
	for _, tt := range tests {
		if got := substitutePath(tt.rel, testSubst); got != tt.want {
			t.Errorf("substitutePath(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
