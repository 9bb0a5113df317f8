package mapengine

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/sudorandom/flightmap/pkg/utils"
)

// SavePNG encodes img to path, creating the directory if needed and
// replacing any previous file.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}
