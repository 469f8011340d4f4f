// ABOUTME: Companion image lookup for audio files
// ABOUTME: Finds the image sharing an audio file's base name using a fixed extension order

package library

import (
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions is the lookup order for companion images
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

// CompanionImage returns the first existing image next to audioPath that
// shares its base name, trying each extension in ImageExtensions order
// (lower case first, then upper case). The second return value is false
// when no image exists.
func CompanionImage(audioPath string) (string, bool) {
	if audioPath == "" {
		return "", false
	}

	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	for _, ext := range ImageExtensions {
		for _, candidate := range []string{base + ext, base + strings.ToUpper(ext)} {
			info, err := os.Stat(filepath.FromSlash(candidate))
			if err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}

	return "", false
}
