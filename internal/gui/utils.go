package gui

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fiapo/internal/log"
)

// parseHexColor parses "#RRGGBB" or "#RGB". Malformed values yield
// fallback.
func parseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		log.Debugf("Invalid color %q: %v", s, err)
		return fallback
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// folderContents returns the regular files directly inside dirPath,
// sorted. Classification later drops the ones that cannot be read.
func folderContents(dirPath string) ([]string, error) {
	if _, err := os.Stat(dirPath); err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dirPath, "*"))
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	sort.Strings(files)

	out := make([]string, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			log.Warnf("Error getting stats for file %s: %v", file, err)
			continue
		}
		if !info.IsDir() {
			out = append(out, file)
		}
	}
	return out, nil
}
