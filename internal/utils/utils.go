package utils

import (
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	// Extra raster decoders for source maps exported by other tools.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// --- 1. Error Reporting ---

// ShowError prints the formatted error box without exiting.
func ShowError(context string, err error) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "🚨 BLANKMAP ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
}

// Die is the unified exit strategy for commands that cannot return an error.
func Die(context string, err error) {
	ShowError(context, err)
	os.Exit(1)
}

// --- 2. Source Enumeration & Naming ---

// ImageExtensions lists the raster formats accepted as source maps.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ListImages returns the raster files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ImageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// CleanName strips every configured substring from name, in order.
// e.g. "2560px-Ohio_in_United_States.svg.png" -> "Ohio.png"
func CleanName(name string, strip []string) string {
	for _, s := range strip {
		if s == "" {
			continue
		}
		name = strings.ReplaceAll(name, s, "")
	}
	return name
}

// RenameInputs renames every source image in dir to its cleaned name.
// Files whose cleaned name is unchanged are left alone.
func RenameInputs(dir string, strip []string) error {
	files, err := ListImages(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		cleaned := CleanName(filepath.Base(f), strip)
		if cleaned == filepath.Base(f) || cleaned == "" {
			continue
		}
		if err := os.Rename(f, filepath.Join(dir, cleaned)); err != nil {
			return fmt.Errorf("failed to rename %s: %w", f, err)
		}
	}
	return nil
}

// StripExt drops the final extension from a file name.
func StripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DisplayName turns a sprite file name into a human readable area name.
// e.g. "New_York.png" -> "New York"
func DisplayName(file string) string {
	return strings.ReplaceAll(StripExt(filepath.Base(file)), "_", " ")
}

// SpriteLocation builds the manifest path of a sprite relative to the parent of root:
// "<base(root)>/<areaType>/<name>" without extension and always with forward slashes.
func SpriteLocation(root, areaType, file string) string {
	return path.Join(filepath.Base(filepath.Clean(root)), areaType, StripExt(filepath.Base(file)))
}

// --- 3. Raster I/O ---

// LoadImage decodes a raster from disk. The returned error names the file.
func LoadImage(p string) (image.Image, error) {
	img, err := imaging.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", p, err)
	}
	return img, nil
}

// SaveImage encodes img to p, creating parent directories as needed.
// The format is chosen from the file extension.
func SaveImage(img image.Image, p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	if err := imaging.Save(img, p); err != nil {
		return fmt.Errorf("failed to write image %s: %w", p, err)
	}
	return nil
}
