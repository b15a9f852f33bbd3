// Package icons generates the fixed sets of launcher icons each platform's
// packaging format requires, by resizing a single source image.
package icons

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// iosPointSizes are the square pixel dimensions the iOS asset catalog
// requires, covering 20/29/40/60pt at 2x and 3x scale factors.
var iosPointSizes = []int{40, 60, 58, 87, 80, 120, 180}

// androidBuckets lists each density bucket with its launcher icon dimension.
var androidBuckets = []struct {
	Bucket string
	Pixels int
}{
	{"mdpi", 48},
	{"hdpi", 72},
	{"xhdpi", 96},
	{"xxhdpi", 144},
}

// SourceExists reports whether path names a readable regular file.
func SourceExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// GenerateIOS resizes the source image to every required iOS dimension and
// writes the results into appIconDir. It returns a map from pixel dimension
// to the generated filename, for the asset-catalog manifest patch.
//
// All resizes run concurrently; the call returns only after every write has
// completed, with each failure tagged by size and the whole set joined.
func GenerateIOS(appIconDir, srcPath string) (map[int]string, error) {
	src, err := decodeSource(srcPath)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	generated := make(map[int]string, len(iosPointSizes))
	errs := make([]error, len(iosPointSizes))

	var wg sync.WaitGroup
	for i, size := range iosPointSizes {
		name := fmt.Sprintf("%d-%s.png", size, stem)
		generated[size] = name

		wg.Add(1)
		go func(i, size int, dest string) {
			defer wg.Done()
			if err := resizeTo(src, size, dest); err != nil {
				errs[i] = fmt.Errorf("ios icon %dpx (%s): %w", size, dest, err)
			}
		}(i, size, filepath.Join(appIconDir, name))
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return generated, nil
}

// GenerateAndroid removes any stale launcher bitmaps and resizes the source
// image into every density bucket under resDir (the res/ directory of the
// generated Android project). Resizes run concurrently and are awaited, with
// failures tagged by bucket and joined.
func GenerateAndroid(resDir, srcPath string) error {
	src, err := decodeSource(srcPath)
	if err != nil {
		return err
	}

	for _, b := range androidBuckets {
		dest := launcherPath(resDir, b.Bucket)
		if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("android icon %s: failed to remove stale %s: %w", b.Bucket, dest, err)
		}
	}

	errs := make([]error, len(androidBuckets))

	var wg sync.WaitGroup
	for i, b := range androidBuckets {
		wg.Add(1)
		go func(i, pixels int, bucket, dest string) {
			defer wg.Done()
			if err := resizeTo(src, pixels, dest); err != nil {
				errs[i] = fmt.Errorf("android icon %s (%s): %w", bucket, dest, err)
			}
		}(i, b.Pixels, b.Bucket, launcherPath(resDir, b.Bucket))
	}
	wg.Wait()

	return errors.Join(errs...)
}

func launcherPath(resDir, bucket string) string {
	return filepath.Join(resDir, "mipmap-"+bucket, "ic_launcher.png")
}

func decodeSource(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon source %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon source %s: %w", path, err)
	}
	return img, nil
}

// resizeTo scales src into a size x size square and writes it as PNG.
func resizeTo(src image.Image, size int, dest string) error {
	if size <= 0 {
		return fmt.Errorf("invalid icon dimension %d", size)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type manifest struct {
	Images []manifestImage `json:"images"`
	Info   json.RawMessage `json:"info,omitempty"`
}

type manifestImage struct {
	Idiom    string `json:"idiom,omitempty"`
	Size     string `json:"size"`
	Scale    string `json:"scale"`
	Filename string `json:"filename,omitempty"`
}

// PatchManifest rewrites the filename of every asset-catalog manifest entry
// whose scale * point-size matches a generated pixel dimension. Entries with
// no matching bitmap are left untouched.
func PatchManifest(path string, generated map[int]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read icon manifest %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse icon manifest %s: %w", path, err)
	}

	for i, img := range m.Images {
		pixels, err := pixelDimension(img.Size, img.Scale)
		if err != nil {
			return fmt.Errorf("icon manifest %s: %w", path, err)
		}
		if name, ok := generated[pixels]; ok {
			m.Images[i].Filename = name
		}
	}

	out, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode icon manifest: %w", err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write icon manifest %s: %w", path, err)
	}
	return nil
}

// pixelDimension computes scale * point size from manifest fields of the
// form "40x40" and "2x".
func pixelDimension(size, scale string) (int, error) {
	pt, _, ok := strings.Cut(size, "x")
	if !ok {
		return 0, fmt.Errorf("malformed size %q", size)
	}
	points, err := strconv.Atoi(strings.TrimSpace(pt))
	if err != nil {
		return 0, fmt.Errorf("malformed size %q", size)
	}

	num, ok := strings.CutSuffix(scale, "x")
	if !ok {
		return 0, fmt.Errorf("malformed scale %q", scale)
	}
	factor, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, fmt.Errorf("malformed scale %q", scale)
	}

	return points * factor, nil
}
