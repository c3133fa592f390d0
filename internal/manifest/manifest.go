// Package manifest builds the JSON description of a generated sprite set.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/andresmejia3/blankmap/internal/types"
	"github.com/andresmejia3/blankmap/internal/utils"
)

// Build turns sprite file paths into manifest records, numbered from 1 in the
// order given.
func Build(spriteFiles []string, root, areaType string) []types.AreaRecord {
	records := make([]types.AreaRecord, 0, len(spriteFiles))
	for i, f := range spriteFiles {
		name := utils.DisplayName(f)
		records = append(records, types.AreaRecord{
			Ordinate:       i + 1,
			LatinName:      name,
			NativeName:     name,
			PhoneticName:   "",
			SpriteLocation: utils.SpriteLocation(root, areaType, f),
		})
	}
	return records
}

// Collect enumerates the area sprites under <root>/<areaType> and builds their records.
func Collect(root, areaType string) ([]types.AreaRecord, error) {
	files, err := filepath.Glob(filepath.Join(root, areaType, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate sprites: %w", err)
	}
	sort.Strings(files)
	return Build(files, root, areaType), nil
}

// Write stores the records as an indented JSON array. Non-ASCII names are written as-is.
func Write(path string, records []types.AreaRecord) error {
	if records == nil {
		records = []types.AreaRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) ([]types.AreaRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var records []types.AreaRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return records, nil
}
